package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listify/internal/model"
)

func TestParseRuleNoTokens(t *testing.T) {
	_, err := ParseRule(model.RecurringWeekly, nil, nil)
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestRuleTokensAreCanonical(t *testing.T) {
	tests := []struct {
		kind      model.RecurringKind
		date      *string
		clock     *string
		wantDate  *string
		wantClock *string
	}{
		{model.RecurringWeekly, ptr("WEEKLY-2"), ptr("7:05"), ptr("Tuesday"), ptr("07:05")},
		{model.RecurringWeekly, ptr("friday"), nil, ptr("Friday"), nil},
		{model.RecurringMonthly, ptr("MONTHLY-09"), nil, ptr("9"), nil},
		{model.RecurringDaily, ptr("DAILY"), ptr("08:00"), nil, ptr("08:00")},
		{model.RecurringNone, ptr("1-2-2027"), nil, ptr("01-02-2027"), nil},
		{model.RecurringNone, ptr("MONTHLY-3"), nil, ptr("3"), nil},
	}
	for _, tt := range tests {
		rule, err := ParseRule(tt.kind, tt.date, tt.clock)
		require.NoError(t, err)
		date, clock := rule.Tokens()
		assert.Equal(t, tt.wantDate, date)
		assert.Equal(t, tt.wantClock, clock)
	}
}

func TestEffectiveKind(t *testing.T) {
	tests := []struct {
		kind model.RecurringKind
		date *string
		want model.RecurringKind
	}{
		{model.RecurringNone, ptr("WEEKLY-1"), model.RecurringWeekly},
		{model.RecurringNone, ptr("monthly-15"), model.RecurringMonthly},
		{model.RecurringNone, ptr("DAILY"), model.RecurringDaily},
		{model.RecurringNone, ptr("01-02-2027"), model.RecurringNone},
		{model.RecurringNone, nil, model.RecurringNone},
		{model.RecurringWeekly, ptr("Monday"), model.RecurringWeekly},
		{"", ptr("WEEKLY-3"), model.RecurringWeekly},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EffectiveKind(tt.kind, tt.date))
	}
}

func TestRuleDescribe(t *testing.T) {
	tests := []struct {
		kind  model.RecurringKind
		date  *string
		clock *string
		want  string
	}{
		{model.RecurringDaily, nil, ptr("09:00"), "Every day at 09:00"},
		{model.RecurringWeekly, ptr("Monday"), ptr("09:00"), "Every Monday at 09:00"},
		{model.RecurringMonthly, ptr("31"), nil, "Monthly on day 31 at 23:59"},
		{model.RecurringNone, ptr("01-02-2026"), nil, "Once on 01-02-2026 at 23:59"},
		{model.RecurringNone, nil, ptr("17:45"), "Today at 17:45"},
	}
	for _, tt := range tests {
		rule, err := ParseRule(tt.kind, tt.date, tt.clock)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rule.Describe())
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "03-07-2026", FormatDate(time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "05:09", FormatTime(5, 9))
}
