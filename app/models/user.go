package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PlanExplorer    = "explorer"
	PlanTrailblazer = "trailblazer"

	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// TrialDays is the length of the Trailblazer trial granted on sign-up.
const TrialDays = 7

// User is keyed by the identity provider's opaque user ID. Subscription
// fields are written by billing webhooks, the Carlo counters by the quota
// engine, and the milestone flags by the onboarding checklist.
type User struct {
	ID                        string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email                     string     `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	FirstName                 string     `gorm:"type:varchar(100);default:null" json:"first_name"`
	LastName                  string     `gorm:"type:varchar(100);default:null" json:"last_name"`
	SubscriptionPlan          string     `gorm:"type:varchar(20);not null;default:'explorer'" json:"subscription_plan" validate:"oneof=explorer trailblazer"`
	SubscriptionStatus        string     `gorm:"type:varchar(20);not null;default:'active'" json:"subscription_status" validate:"oneof=active trialing past_due canceled"`
	StripeCustomerID          string     `gorm:"type:varchar(64);default:null;index" json:"-"`
	StripeSubscriptionID      string     `gorm:"type:varchar(64);default:null" json:"-"`
	MonthlyCarloConversations int        `gorm:"not null;default:0" json:"monthly_carlo_conversations" validate:"min=0"`
	CarloConversationResetAt  *time.Time `gorm:"type:timestamp;default:null" json:"carlo_conversation_reset_at"`
	TrialEndsAt               *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at"`
	SubscriptionEndsAt        *time.Time `gorm:"type:timestamp;default:null" json:"subscription_ends_at"`
	AIContext                 string     `gorm:"column:ai_context;type:text" json:"ai_context" validate:"max=1000"`
	HasAddedGear              bool       `gorm:"not null;default:false" json:"has_added_gear"`
	FirstGearAddedAt          *time.Time `gorm:"type:timestamp;default:null" json:"first_gear_added_at"`
	HasCompletedProfile       bool       `gorm:"not null;default:false" json:"has_completed_profile"`
	ProfileCompletedAt        *time.Time `gorm:"type:timestamp;default:null" json:"profile_completed_at"`
	HasUsedCarloChat          bool       `gorm:"not null;default:false" json:"has_used_carlo_chat"`
	FirstCarloChatAt          *time.Time `gorm:"type:timestamp;default:null" json:"first_carlo_chat_at"`
	CreatedAt                 time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewTrialUser builds the initial row for a freshly signed-up user: a
// time-boxed Trailblazer trial plus a quota window ending on the first
// instant of the next calendar month.
func NewTrialUser(id, email, firstName, lastName string, now time.Time) *User {
	trialEnd := now.AddDate(0, 0, TrialDays)
	resetAt := FirstOfNextMonth(now)

	return &User{
		ID:                       id,
		Email:                    email,
		FirstName:                firstName,
		LastName:                 lastName,
		SubscriptionPlan:         PlanTrailblazer,
		SubscriptionStatus:       SubscriptionTrialing,
		TrialEndsAt:              &trialEnd,
		CarloConversationResetAt: &resetAt,
	}
}

// FirstOfNextMonth returns midnight on the first day of the month after t,
// in t's location.
func FirstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// HasUnlimitedChat reports whether the user's plan grants unlimited Carlo
// conversations. Canceled or past-due Trailblazers fall back to the
// Explorer limit.
func (u *User) HasUnlimitedChat() bool {
	return u.SubscriptionPlan == PlanTrailblazer &&
		(u.SubscriptionStatus == SubscriptionActive || u.SubscriptionStatus == SubscriptionTrialing)
}
