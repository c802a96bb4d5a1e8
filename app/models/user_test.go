package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrialUser(t *testing.T) {
	now := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)

	u := NewTrialUser("user_2abc", "mallory@example.com", "Mallory", "Knox", now)

	assert.Equal(t, PlanTrailblazer, u.SubscriptionPlan)
	assert.Equal(t, SubscriptionTrialing, u.SubscriptionStatus)
	assert.Equal(t, 0, u.MonthlyCarloConversations)

	require.NotNil(t, u.TrialEndsAt)
	assert.Equal(t, now.AddDate(0, 0, 7), *u.TrialEndsAt)

	require.NotNil(t, u.CarloConversationResetAt)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), *u.CarloConversationResetAt)
}

func TestFirstOfNextMonth(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{
			in:   time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// December rolls over the year boundary.
			in:   time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// Already on the first: still advances to the next month.
			in:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		if got := FirstOfNextMonth(tt.in); !got.Equal(tt.want) {
			t.Fatalf("FirstOfNextMonth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHasUnlimitedChat(t *testing.T) {
	tests := []struct {
		plan   string
		status string
		want   bool
	}{
		{plan: PlanTrailblazer, status: SubscriptionActive, want: true},
		{plan: PlanTrailblazer, status: SubscriptionTrialing, want: true},
		{plan: PlanTrailblazer, status: SubscriptionPastDue, want: false},
		{plan: PlanTrailblazer, status: SubscriptionCanceled, want: false},
		{plan: PlanExplorer, status: SubscriptionActive, want: false},
		{plan: PlanExplorer, status: SubscriptionTrialing, want: false},
	}

	for _, tt := range tests {
		u := &User{SubscriptionPlan: tt.plan, SubscriptionStatus: tt.status}
		if got := u.HasUnlimitedChat(); got != tt.want {
			t.Fatalf("HasUnlimitedChat() with %s/%s = %v, want %v", tt.plan, tt.status, got, tt.want)
		}
	}
}
