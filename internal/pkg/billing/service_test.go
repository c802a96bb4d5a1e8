package billing

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
)

type fakeUserStore struct {
	byCustomer map[string]*models.User
	updates    []fieldUpdate
}

type fieldUpdate struct {
	userID string
	fields map[string]interface{}
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byCustomer: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(u *models.User) error { return nil }
func (f *fakeUserStore) GetByID(id string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByStripeCustomerID(customerID string) (*models.User, error) {
	u, ok := f.byCustomer[customerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Update(u *models.User) error { return nil }

func (f *fakeUserStore) UpdateFields(id string, fields map[string]interface{}) error {
	f.updates = append(f.updates, fieldUpdate{userID: id, fields: fields})
	return nil
}

func (f *fakeUserStore) ResetCarloQuota(id string, nextReset time.Time) error { return nil }
func (f *fakeUserStore) IncrementCarloConversations(id string) error          { return nil }

func newTestBillingService(users *fakeUserStore) *Service {
	svc := NewService(users)
	svc.now = func() time.Time {
		return time.Date(2026, time.May, 20, 10, 0, 0, 0, time.UTC)
	}
	svc.notifyTrialEnding = func(to, firstName string, trialEnd time.Time) error { return nil }
	return svc
}

func subscriptionEvent(t *testing.T, eventType string, sub map[string]interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	return stripe.Event{Type: stripe.EventType(eventType), Data: &stripe.EventData{Raw: raw}}
}

func TestHandleSubscriptionUpdated(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1", SubscriptionPlan: models.PlanExplorer}
	svc := newTestBillingService(users)

	trialEnd := time.Date(2026, time.May, 27, 0, 0, 0, 0, time.UTC)
	event := subscriptionEvent(t, "customer.subscription.updated", map[string]interface{}{
		"id":        "sub_1",
		"customer":  map[string]interface{}{"id": "cus_1"},
		"status":    "trialing",
		"trial_end": trialEnd.Unix(),
	})

	require.NoError(t, svc.HandleEvent(event))
	require.Len(t, users.updates, 1)

	up := users.updates[0]
	assert.Equal(t, "user_1", up.userID)
	assert.Equal(t, models.PlanTrailblazer, up.fields["subscription_plan"])
	assert.Equal(t, models.SubscriptionTrialing, up.fields["subscription_status"])
	assert.Equal(t, "sub_1", up.fields["stripe_subscription_id"])
	assert.Equal(t, trialEnd, up.fields["trial_ends_at"].(time.Time).UTC())
	assert.Nil(t, up.fields["subscription_ends_at"])
}

func TestHandleSubscriptionCancelAtPeriodEnd(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1"}
	svc := newTestBillingService(users)

	periodEnd := time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)
	event := subscriptionEvent(t, "customer.subscription.updated", map[string]interface{}{
		"id":                   "sub_1",
		"customer":             map[string]interface{}{"id": "cus_1"},
		"status":               "active",
		"cancel_at_period_end": true,
		"current_period_end":   periodEnd.Unix(),
	})

	require.NoError(t, svc.HandleEvent(event))
	require.Len(t, users.updates, 1)
	assert.Equal(t, models.SubscriptionActive, users.updates[0].fields["subscription_status"])
	assert.Equal(t, periodEnd, users.updates[0].fields["subscription_ends_at"].(time.Time).UTC())
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1", SubscriptionPlan: models.PlanTrailblazer}
	svc := newTestBillingService(users)

	event := subscriptionEvent(t, "customer.subscription.deleted", map[string]interface{}{
		"id":       "sub_1",
		"customer": map[string]interface{}{"id": "cus_1"},
		"status":   "canceled",
	})

	require.NoError(t, svc.HandleEvent(event))
	require.Len(t, users.updates, 1)

	up := users.updates[0]
	assert.Equal(t, models.PlanExplorer, up.fields["subscription_plan"])
	assert.Equal(t, models.SubscriptionCanceled, up.fields["subscription_status"])
	assert.Equal(t, "", up.fields["stripe_subscription_id"])
	assert.Nil(t, up.fields["trial_ends_at"])
	assert.Nil(t, up.fields["subscription_ends_at"])
}

func TestHandleSubscriptionUpdatedClearsTrialEnd(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1"}
	svc := newTestBillingService(users)

	// Trial converted: Stripe drops trial_end from the subscription, so
	// the stored date must be nulled, not left behind.
	event := subscriptionEvent(t, "customer.subscription.updated", map[string]interface{}{
		"id":       "sub_1",
		"customer": map[string]interface{}{"id": "cus_1"},
		"status":   "active",
	})

	require.NoError(t, svc.HandleEvent(event))
	require.Len(t, users.updates, 1)

	up := users.updates[0]
	assert.Equal(t, models.SubscriptionActive, up.fields["subscription_status"])
	require.Contains(t, up.fields, "trial_ends_at")
	assert.Nil(t, up.fields["trial_ends_at"])
}

func TestHandleInvoicePayment(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1", SubscriptionPlan: models.PlanTrailblazer}
	svc := newTestBillingService(users)

	failed := subscriptionEvent(t, "invoice.payment_failed", map[string]interface{}{
		"customer": map[string]interface{}{"id": "cus_1"},
	})
	require.NoError(t, svc.HandleEvent(failed))
	require.Len(t, users.updates, 1)
	assert.Equal(t, models.SubscriptionPastDue, users.updates[0].fields["subscription_status"])

	succeeded := subscriptionEvent(t, "invoice.payment_succeeded", map[string]interface{}{
		"customer": map[string]interface{}{"id": "cus_1"},
	})
	require.NoError(t, svc.HandleEvent(succeeded))
	require.Len(t, users.updates, 2)
	assert.Equal(t, models.SubscriptionActive, users.updates[1].fields["subscription_status"])
}

func TestHandleInvoiceIgnoredForExplorer(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1", SubscriptionPlan: models.PlanExplorer}
	svc := newTestBillingService(users)

	event := subscriptionEvent(t, "invoice.payment_failed", map[string]interface{}{
		"customer": map[string]interface{}{"id": "cus_1"},
	})

	require.NoError(t, svc.HandleEvent(event))
	assert.Empty(t, users.updates)
}

func TestHandleTrialWillEndSendsReminder(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1", Email: "sam@example.com", FirstName: "Sam"}
	svc := newTestBillingService(users)

	var gotTo string
	var gotEnd time.Time
	svc.notifyTrialEnding = func(to, firstName string, trialEnd time.Time) error {
		gotTo = to
		gotEnd = trialEnd
		return nil
	}

	trialEnd := time.Date(2026, time.May, 23, 0, 0, 0, 0, time.UTC)
	event := subscriptionEvent(t, "customer.subscription.trial_will_end", map[string]interface{}{
		"id":        "sub_1",
		"customer":  map[string]interface{}{"id": "cus_1"},
		"trial_end": trialEnd.Unix(),
	})

	require.NoError(t, svc.HandleEvent(event))
	assert.Equal(t, "sam@example.com", gotTo)
	assert.Equal(t, trialEnd, gotEnd.UTC())
	assert.Empty(t, users.updates)
}

func TestHandleTrialWillEndMailFailureStillSucceeds(t *testing.T) {
	users := newFakeUserStore()
	users.byCustomer["cus_1"] = &models.User{ID: "user_1", Email: "sam@example.com"}
	svc := newTestBillingService(users)
	svc.notifyTrialEnding = func(to, firstName string, trialEnd time.Time) error {
		return fmt.Errorf("smtp down")
	}

	event := subscriptionEvent(t, "customer.subscription.trial_will_end", map[string]interface{}{
		"customer": map[string]interface{}{"id": "cus_1"},
	})

	assert.NoError(t, svc.HandleEvent(event))
}

func TestHandleEventUnknownCustomerDropped(t *testing.T) {
	svc := newTestBillingService(newFakeUserStore())

	event := subscriptionEvent(t, "customer.subscription.updated", map[string]interface{}{
		"id":       "sub_1",
		"customer": map[string]interface{}{"id": "cus_missing"},
		"status":   "active",
	})

	assert.NoError(t, svc.HandleEvent(event))
}

func TestHandleEventUnknownTypeIgnored(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestBillingService(users)

	event := stripe.Event{Type: "payment_intent.created", Data: &stripe.EventData{Raw: []byte(`{}`)}}
	assert.NoError(t, svc.HandleEvent(event))
	assert.Empty(t, users.updates)
}

func TestMapSubscriptionStatus(t *testing.T) {
	cases := []struct {
		in   stripe.SubscriptionStatus
		want string
	}{
		{stripe.SubscriptionStatusTrialing, models.SubscriptionTrialing},
		{stripe.SubscriptionStatusActive, models.SubscriptionActive},
		{stripe.SubscriptionStatusPastDue, models.SubscriptionPastDue},
		{stripe.SubscriptionStatusCanceled, models.SubscriptionCanceled},
		{stripe.SubscriptionStatusUnpaid, models.SubscriptionCanceled},
		{stripe.SubscriptionStatusIncomplete, models.SubscriptionActive},
		{stripe.SubscriptionStatus("something_new"), models.SubscriptionActive},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapSubscriptionStatus(tc.in), string(tc.in))
	}
}

func TestPriceForInterval(t *testing.T) {
	_, err := priceForInterval("weekly")
	assert.ErrorIs(t, err, ErrBadInterval)
}
