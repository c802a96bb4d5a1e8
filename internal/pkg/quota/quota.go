// Package quota enforces the monthly Carlo conversation limit for
// Explorer-tier users and performs the lazy calendar-month counter reset.
package quota

import (
	"log"
	"time"

	"github.com/yonderlust/yonderlust/app/models"
)

// ExplorerMonthlyLimit is the number of Carlo conversations an Explorer
// (or a lapsed Trailblazer) may start per calendar month.
const ExplorerMonthlyLimit = 5

// UnlimitedRemaining is the sentinel reported for unlimited-tier users.
const UnlimitedRemaining = -1

const (
	ReasonNotAuthenticated = "Not authenticated"
	ReasonUserNotFound     = "User not found"
	ReasonTrailblazer      = "Trailblazer subscription active"
	ReasonExplorer         = "Explorer plan"
	ReasonLimitReached     = "Monthly conversation limit reached. Upgrade to Trailblazer for unlimited conversations."
)

// AccessResult is the outcome of a quota check. Remaining is -1 for
// unlimited plans.
type AccessResult struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
	Remaining int    `json:"remaining"`
}

// Store is the slice of the user repository the engine needs.
type Store interface {
	GetByID(id string) (*models.User, error)
	ResetCarloQuota(id string, nextReset time.Time) error
	IncrementCarloConversations(id string) error
}

// Engine evaluates chat access per user. State is derived fresh from the
// stored fields on every check; the only side effect is the monthly reset.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates an engine using wall-clock time.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NewEngineWithClock creates an engine with an injected clock, so the
// reset transition can be tested without waiting for month boundaries.
func NewEngineWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// CheckAccess decides whether the user may start one more Carlo exchange.
// It fails closed: unknown users and store errors deny access. The check
// itself never consumes quota; call RecordUsage after a completed
// exchange.
func (e *Engine) CheckAccess(userID string) AccessResult {
	if userID == "" {
		return AccessResult{Allowed: false, Reason: ReasonNotAuthenticated, Remaining: 0}
	}

	user, err := e.store.GetByID(userID)
	if err != nil || user == nil {
		if err != nil {
			log.Printf("quota: user lookup failed for %s: %v", userID, err)
		}
		return AccessResult{Allowed: false, Reason: ReasonUserNotFound, Remaining: 0}
	}

	now := e.now()
	counter, nextReset, due := resetIfDue(now, user.MonthlyCarloConversations, user.CarloConversationResetAt)
	if due {
		// Persisted immediately, independent of the final decision, so the
		// window advances at most once per elapsed month.
		if err := e.store.ResetCarloQuota(userID, nextReset); err != nil {
			log.Printf("quota: counter reset failed for %s: %v", userID, err)
			return AccessResult{Allowed: false, Reason: ReasonUserNotFound, Remaining: 0}
		}
	}

	if user.HasUnlimitedChat() {
		return AccessResult{Allowed: true, Reason: ReasonTrailblazer, Remaining: UnlimitedRemaining}
	}

	remaining := ExplorerMonthlyLimit - counter
	if remaining < 0 {
		remaining = 0
	}
	if counter >= ExplorerMonthlyLimit {
		return AccessResult{Allowed: false, Reason: ReasonLimitReached, Remaining: 0}
	}

	return AccessResult{Allowed: true, Reason: ReasonExplorer, Remaining: remaining}
}

// RecordUsage counts one completed exchange. The increment is a single
// atomic SQL update in the store.
func (e *Engine) RecordUsage(userID string) error {
	if userID == "" {
		return nil
	}
	return e.store.IncrementCarloConversations(userID)
}

// resetIfDue is the pure monthly-reset transition: given the current time
// and the stored counter/reset pair, it returns the effective counter, the
// next reset boundary, and whether a persisted reset is due. A missing
// reset timestamp counts as due.
func resetIfDue(now time.Time, counter int, resetAt *time.Time) (int, time.Time, bool) {
	if resetAt != nil && now.Before(*resetAt) {
		return counter, *resetAt, false
	}
	return 0, models.FirstOfNextMonth(now), true
}

// SubscriptionInfo is the plan/usage snapshot exposed to the profile and
// chat screens.
type SubscriptionInfo struct {
	Plan                 string     `json:"plan"`
	Status               string     `json:"status"`
	TrialEndsAt          *time.Time `json:"trial_ends_at"`
	SubscriptionEndsAt   *time.Time `json:"subscription_ends_at"`
	MonthlyConversations int        `json:"monthly_conversations"`
	ConversationLimit    int        `json:"conversation_limit"`
}

// SubscriptionInfo returns the current subscription snapshot for a user,
// or nil if the user does not exist.
func (e *Engine) SubscriptionInfo(userID string) (*SubscriptionInfo, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := e.store.GetByID(userID)
	if err != nil {
		return nil, err
	}

	limit := ExplorerMonthlyLimit
	if user.SubscriptionPlan == models.PlanTrailblazer {
		limit = UnlimitedRemaining
	}

	return &SubscriptionInfo{
		Plan:                 user.SubscriptionPlan,
		Status:               user.SubscriptionStatus,
		TrialEndsAt:          user.TrialEndsAt,
		SubscriptionEndsAt:   user.SubscriptionEndsAt,
		MonthlyConversations: user.MonthlyCarloConversations,
		ConversationLimit:    limit,
	}, nil
}
