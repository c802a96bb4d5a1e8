package billing

import (
	"github.com/stripe/stripe-go/v79"

	"github.com/yonderlust/yonderlust/app/models"
)

// mapSubscriptionStatus folds Stripe's subscription lifecycle onto the
// four states the app tracks. incomplete/incomplete_expired land on
// "active" so a user mid-payment-confirmation is not locked out; a
// genuine failure arrives later as past_due or canceled.
func mapSubscriptionStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusTrialing:
		return models.SubscriptionTrialing
	case stripe.SubscriptionStatusActive:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusPastDue:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionActive
	}
}
