package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_config")

	conf, err := Load("payments")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if conf.ServiceName != "payments" {
		t.Errorf("service name: got %q", conf.ServiceName)
	}
	if conf.Server.Port != "8080" {
		t.Errorf("server port: got %q, want %q", conf.Server.Port, "8080")
	}
	if conf.Stripe.ApplicationFeeAmount != 100 {
		t.Errorf("application fee: got %d, want 100", conf.Stripe.ApplicationFeeAmount)
	}
	if conf.Stripe.AccountCountry != "US" {
		t.Errorf("account country: got %q, want %q", conf.Stripe.AccountCountry, "US")
	}
	if conf.DB.DBName != "payments" {
		t.Errorf("db name: got %q, want service name default", conf.DB.DBName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_config")
	t.Setenv("STRIPE_APPLICATION_FEE_AMOUNT", "250")
	t.Setenv("APP_BASE_URL", "https://storefront.example.com")
	t.Setenv("SERVER_PORT", "9000")

	conf, err := Load("payments")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if conf.Stripe.ApplicationFeeAmount != 250 {
		t.Errorf("application fee: got %d, want 250", conf.Stripe.ApplicationFeeAmount)
	}
	if conf.Stripe.AppBaseURL != "https://storefront.example.com" {
		t.Errorf("app base url: got %q", conf.Stripe.AppBaseURL)
	}
	if conf.Server.Port != "9000" {
		t.Errorf("server port: got %q, want %q", conf.Server.Port, "9000")
	}
}

func TestLoadRequiresStripeKey(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")

	if _, err := Load("payments"); err == nil {
		t.Fatal("expected Load to fail without a Stripe secret key")
	}
}
