package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

var ConnectAccountCreatedCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stripe_connect_accounts_created_total",
		Help: "Total number of Stripe Express accounts created",
	},
)

var OnboardingLinkCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stripe_onboarding_links_total",
		Help: "Total number of onboarding account links issued",
	},
)

var CheckoutSessionCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stripe_checkout_sessions_created_total",
		Help: "Total number of checkout sessions created on connected accounts",
	},
)

var LoginLinkCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stripe_login_links_total",
		Help: "Total number of Express dashboard login links issued",
	},
)

var ProductSyncCounter = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stripe_products_synced_total",
		Help: "Total number of products created on connected accounts",
	},
)

var WebhookEventCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Total number of webhook events received, by type and outcome",
	},
	[]string{"type", "outcome"},
)

func init() {
	prometheus.MustRegister(ConnectAccountCreatedCounter)
	prometheus.MustRegister(OnboardingLinkCounter)
	prometheus.MustRegister(CheckoutSessionCounter)
	prometheus.MustRegister(LoginLinkCounter)
	prometheus.MustRegister(ProductSyncCounter)
	prometheus.MustRegister(WebhookEventCounter)
}
