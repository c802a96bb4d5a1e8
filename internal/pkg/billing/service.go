// Package billing integrates Stripe subscriptions: checkout and portal
// session creation plus webhook-driven plan synchronization.
package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/env"
	"github.com/yonderlust/yonderlust/internal/pkg/mail"
)

const (
	IntervalMonthly = "monthly"
	IntervalAnnual  = "annual"
)

var (
	ErrNotConfigured = errors.New("billing not configured")
	ErrNoCustomer    = errors.New("no billing profile for user")
	ErrBadInterval   = errors.New("interval must be monthly or annual")
)

// Setup installs the secret API key into the Stripe client. Call once at
// startup before any billing operation.
func Setup() {
	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
}

// Service owns the Stripe side of subscriptions. Webhook handling only
// touches the user store; session creation additionally calls the Stripe
// API.
type Service struct {
	users             repository.UserRepository
	notifyTrialEnding func(to, firstName string, trialEnd time.Time) error
	now               func() time.Time
}

// NewService creates a billing service over the user store.
func NewService(users repository.UserRepository) *Service {
	return &Service{
		users:             users,
		notifyTrialEnding: mail.SendTrialEndingSoon,
		now:               time.Now,
	}
}

// CreateCheckoutSession starts a subscription checkout for the user and
// returns the hosted page URL. A Stripe customer is created on first use
// and persisted on the user row. A signup trial still in progress carries
// over to the subscription, so checkout never restarts or shortens it.
func (s *Service) CreateCheckoutSession(user *models.User, interval string) (string, error) {
	priceID, err := priceForInterval(interval)
	if err != nil {
		return "", err
	}
	appURL := strings.TrimRight(env.GetEnv("APP_URL", ""), "/")
	if appURL == "" {
		return "", ErrNotConfigured
	}

	customerID, err := s.ensureCustomer(user)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(appURL + "/account?checkout=success"),
		CancelURL:           stripe.String(appURL + "/account?checkout=canceled"),
	}
	if user.SubscriptionStatus == models.SubscriptionTrialing &&
		user.TrialEndsAt != nil && user.TrialEndsAt.After(s.now()) {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialEnd: stripe.Int64(user.TrialEndsAt.Unix()),
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the Stripe customer portal for an existing
// billing customer.
func (s *Service) CreatePortalSession(user *models.User) (string, error) {
	if user.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}
	appURL := strings.TrimRight(env.GetEnv("APP_URL", ""), "/")
	if appURL == "" {
		return "", ErrNotConfigured
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(appURL + "/account"),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *Service) ensureCustomer(user *models.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(strings.TrimSpace(user.FirstName + " " + user.LastName)),
	}
	params.AddMetadata("user_id", user.ID)

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}

	if err := s.users.UpdateFields(user.ID, map[string]interface{}{
		"stripe_customer_id": cust.ID,
	}); err != nil {
		return "", err
	}
	user.StripeCustomerID = cust.ID
	return cust.ID, nil
}

// HandleEvent applies one verified Stripe event to the local user record.
// Unknown event types are acknowledged without effect. An event for a
// customer with no local user is logged and dropped rather than retried:
// Stripe redelivers on non-2xx, and a missing mapping will not heal.
func (s *Service) HandleEvent(event stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		sub, err := parseSubscription(event.Data.Raw)
		if err != nil {
			return err
		}
		return s.applySubscription(sub)

	case "customer.subscription.deleted":
		sub, err := parseSubscription(event.Data.Raw)
		if err != nil {
			return err
		}
		return s.clearSubscription(sub)

	case "customer.subscription.trial_will_end":
		sub, err := parseSubscription(event.Data.Raw)
		if err != nil {
			return err
		}
		return s.trialEndingSoon(sub)

	case "invoice.payment_succeeded":
		return s.applyInvoiceStatus(event.Data.Raw, models.SubscriptionActive)

	case "invoice.payment_failed":
		return s.applyInvoiceStatus(event.Data.Raw, models.SubscriptionPastDue)

	default:
		return nil
	}
}

func (s *Service) applySubscription(sub *stripe.Subscription) error {
	user, err := s.userForCustomer(customerID(sub.Customer))
	if err != nil || user == nil {
		return err
	}

	fields := map[string]interface{}{
		"subscription_plan":      models.PlanTrailblazer,
		"subscription_status":    mapSubscriptionStatus(sub.Status),
		"stripe_subscription_id": sub.ID,
	}
	if sub.TrialEnd > 0 {
		fields["trial_ends_at"] = time.Unix(sub.TrialEnd, 0)
	} else {
		// A converted trial no longer carries trial_end; the stored date
		// must go away with it.
		fields["trial_ends_at"] = nil
	}
	if sub.CancelAtPeriodEnd && sub.CurrentPeriodEnd > 0 {
		fields["subscription_ends_at"] = time.Unix(sub.CurrentPeriodEnd, 0)
	} else {
		fields["subscription_ends_at"] = nil
	}
	return s.users.UpdateFields(user.ID, fields)
}

func (s *Service) clearSubscription(sub *stripe.Subscription) error {
	user, err := s.userForCustomer(customerID(sub.Customer))
	if err != nil || user == nil {
		return err
	}
	return s.users.UpdateFields(user.ID, map[string]interface{}{
		"subscription_plan":      models.PlanExplorer,
		"subscription_status":    models.SubscriptionCanceled,
		"stripe_subscription_id": "",
		"trial_ends_at":          nil,
		"subscription_ends_at":   nil,
	})
}

func (s *Service) trialEndingSoon(sub *stripe.Subscription) error {
	user, err := s.userForCustomer(customerID(sub.Customer))
	if err != nil || user == nil {
		return err
	}
	trialEnd := s.now()
	if sub.TrialEnd > 0 {
		trialEnd = time.Unix(sub.TrialEnd, 0)
	}
	if err := s.notifyTrialEnding(user.Email, user.FirstName, trialEnd); err != nil {
		// Reminder mail is best effort; the webhook still succeeds.
		log.Printf("billing: trial reminder failed for %s: %v", user.ID, err)
	}
	return nil
}

func (s *Service) applyInvoiceStatus(raw json.RawMessage, status string) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("parse invoice event: %w", err)
	}

	user, err := s.userForCustomer(customerID(inv.Customer))
	if err != nil || user == nil {
		return err
	}
	// Invoices for users who never held a paid plan (or already dropped
	// back to Explorer) carry no state the app tracks.
	if user.SubscriptionPlan != models.PlanTrailblazer {
		return nil
	}
	return s.users.UpdateFields(user.ID, map[string]interface{}{
		"subscription_status": status,
	})
}

func (s *Service) userForCustomer(stripeCustomerID string) (*models.User, error) {
	if stripeCustomerID == "" {
		log.Printf("billing: event without customer id dropped")
		return nil, nil
	}
	user, err := s.users.GetByStripeCustomerID(stripeCustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: no user for stripe customer %s", stripeCustomerID)
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func parseSubscription(raw json.RawMessage) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("parse subscription event: %w", err)
	}
	return &sub, nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func priceForInterval(interval string) (string, error) {
	var key string
	switch interval {
	case IntervalMonthly:
		key = "STRIPE_PRICE_TRAILBLAZER_MONTHLY"
	case IntervalAnnual:
		key = "STRIPE_PRICE_TRAILBLAZER_ANNUAL"
	default:
		return "", ErrBadInterval
	}
	priceID := env.GetEnv(key, "")
	if priceID == "" {
		return "", ErrNotConfigured
	}
	return priceID, nil
}
