package quota

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonderlust/yonderlust/app/models"
)

type fakeStore struct {
	users      map[string]*models.User
	getErr     error
	resetErr   error
	resetCalls int
	increments int
}

func newFakeStore(users ...*models.User) *fakeStore {
	s := &fakeStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetByID(id string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}

func (s *fakeStore) ResetCarloQuota(id string, nextReset time.Time) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.resetCalls++
	if u, ok := s.users[id]; ok {
		u.MonthlyCarloConversations = 0
		u.CarloConversationResetAt = &nextReset
	}
	return nil
}

func (s *fakeStore) IncrementCarloConversations(id string) error {
	s.increments++
	if u, ok := s.users[id]; ok {
		u.MonthlyCarloConversations++
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2025, time.May, 20, 15, 4, 5, 0, time.UTC)

func futureReset() *time.Time {
	t := models.FirstOfNextMonth(testNow)
	return &t
}

func TestCheckAccessExplorerAtLimit(t *testing.T) {
	store := newFakeStore(&models.User{
		ID:                        "user_a",
		SubscriptionPlan:          models.PlanExplorer,
		SubscriptionStatus:        models.SubscriptionActive,
		MonthlyCarloConversations: 5,
		CarloConversationResetAt:  futureReset(),
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	res := engine.CheckAccess("user_a")

	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, ReasonLimitReached, res.Reason)
	assert.Equal(t, 0, store.resetCalls)
}

func TestCheckAccessTrailblazerTrialingUnlimited(t *testing.T) {
	store := newFakeStore(&models.User{
		ID:                        "user_b",
		SubscriptionPlan:          models.PlanTrailblazer,
		SubscriptionStatus:        models.SubscriptionTrialing,
		MonthlyCarloConversations: 999,
		CarloConversationResetAt:  futureReset(),
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	res := engine.CheckAccess("user_b")

	assert.True(t, res.Allowed)
	assert.Equal(t, UnlimitedRemaining, res.Remaining)
}

func TestCheckAccessLapsedTrailblazerUsesLimit(t *testing.T) {
	for _, status := range []string{models.SubscriptionPastDue, models.SubscriptionCanceled} {
		store := newFakeStore(&models.User{
			ID:                        "user_c",
			SubscriptionPlan:          models.PlanTrailblazer,
			SubscriptionStatus:        status,
			MonthlyCarloConversations: 2,
			CarloConversationResetAt:  futureReset(),
		})
		engine := NewEngineWithClock(store, fixedClock(testNow))

		res := engine.CheckAccess("user_c")

		assert.True(t, res.Allowed, "status %s", status)
		assert.Equal(t, 3, res.Remaining, "status %s", status)
	}
}

func TestCheckAccessResetsExpiredWindow(t *testing.T) {
	past := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.User{
		ID:                        "user_d",
		SubscriptionPlan:          models.PlanExplorer,
		SubscriptionStatus:        models.SubscriptionActive,
		MonthlyCarloConversations: 5,
		CarloConversationResetAt:  &past,
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	res := engine.CheckAccess("user_d")

	// Counter was exhausted, but the window had elapsed: reset, then allow.
	assert.True(t, res.Allowed)
	assert.Equal(t, ExplorerMonthlyLimit, res.Remaining)
	assert.Equal(t, 1, store.resetCalls)

	require.NotNil(t, store.users["user_d"].CarloConversationResetAt)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), *store.users["user_d"].CarloConversationResetAt)
}

func TestCheckAccessResetIdempotentWithinMonth(t *testing.T) {
	past := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.User{
		ID:                       "user_e",
		SubscriptionPlan:         models.PlanExplorer,
		SubscriptionStatus:       models.SubscriptionActive,
		CarloConversationResetAt: &past,
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	engine.CheckAccess("user_e")
	engine.CheckAccess("user_e")

	assert.Equal(t, 1, store.resetCalls)
}

func TestCheckAccessMissingResetTimestampTreatedAsDue(t *testing.T) {
	store := newFakeStore(&models.User{
		ID:                 "user_f",
		SubscriptionPlan:   models.PlanExplorer,
		SubscriptionStatus: models.SubscriptionActive,
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	res := engine.CheckAccess("user_f")

	assert.True(t, res.Allowed)
	assert.Equal(t, 1, store.resetCalls)
}

func TestCheckAccessFailsClosed(t *testing.T) {
	engine := NewEngineWithClock(newFakeStore(), fixedClock(testNow))

	res := engine.CheckAccess("user_unknown")
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonUserNotFound, res.Reason)

	res = engine.CheckAccess("")
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonNotAuthenticated, res.Reason)

	broken := newFakeStore()
	broken.getErr = errors.New("connection refused")
	engine = NewEngineWithClock(broken, fixedClock(testNow))
	res = engine.CheckAccess("user_a")
	assert.False(t, res.Allowed)
}

func TestCheckAccessDenialHasNoSideEffects(t *testing.T) {
	store := newFakeStore(&models.User{
		ID:                        "user_g",
		SubscriptionPlan:          models.PlanExplorer,
		SubscriptionStatus:        models.SubscriptionActive,
		MonthlyCarloConversations: 5,
		CarloConversationResetAt:  futureReset(),
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	engine.CheckAccess("user_g")

	assert.Equal(t, 0, store.resetCalls)
	assert.Equal(t, 0, store.increments)
	assert.Equal(t, 5, store.users["user_g"].MonthlyCarloConversations)
}

func TestRecordUsage(t *testing.T) {
	store := newFakeStore(&models.User{ID: "user_h"})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	require.NoError(t, engine.RecordUsage("user_h"))
	require.NoError(t, engine.RecordUsage("user_h"))

	assert.Equal(t, 2, store.users["user_h"].MonthlyCarloConversations)
}

func TestResetIfDue(t *testing.T) {
	future := testNow.Add(time.Hour)
	exact := testNow

	tests := []struct {
		name        string
		counter     int
		resetAt     *time.Time
		wantCounter int
		wantDue     bool
	}{
		{name: "before boundary", counter: 3, resetAt: &future, wantCounter: 3, wantDue: false},
		{name: "at boundary", counter: 3, resetAt: &exact, wantCounter: 0, wantDue: true},
		{name: "no timestamp", counter: 3, resetAt: nil, wantCounter: 0, wantDue: true},
	}

	for _, tt := range tests {
		counter, next, due := resetIfDue(testNow, tt.counter, tt.resetAt)
		if counter != tt.wantCounter || due != tt.wantDue {
			t.Fatalf("%s: resetIfDue = (%d, %v), want (%d, %v)", tt.name, counter, due, tt.wantCounter, tt.wantDue)
		}
		if due && !next.Equal(models.FirstOfNextMonth(testNow)) {
			t.Fatalf("%s: next reset = %v, want first of next month", tt.name, next)
		}
	}
}

func TestSubscriptionInfo(t *testing.T) {
	store := newFakeStore(&models.User{
		ID:                        "user_i",
		SubscriptionPlan:          models.PlanTrailblazer,
		SubscriptionStatus:        models.SubscriptionActive,
		MonthlyCarloConversations: 7,
	})
	engine := NewEngineWithClock(store, fixedClock(testNow))

	info, err := engine.SubscriptionInfo("user_i")
	require.NoError(t, err)
	assert.Equal(t, UnlimitedRemaining, info.ConversationLimit)
	assert.Equal(t, 7, info.MonthlyConversations)

	store.users["user_i"].SubscriptionPlan = models.PlanExplorer
	info, err = engine.SubscriptionInfo("user_i")
	require.NoError(t, err)
	assert.Equal(t, ExplorerMonthlyLimit, info.ConversationLimit)
}
