package handler

import (
	"net/http"
	"testing"

	"payments-service/internal/model"
)

func TestCreateProductMissingFields(t *testing.T) {
	h := NewProductHandler(newFakeStore(), newFakeStore(), &mockStripeClient{})

	c, rec := newJSONContext(t, `{"store_id":"store-1","name":"Desk Lamp"}`)
	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateProductUnknownStore(t *testing.T) {
	h := NewProductHandler(newFakeStore(), newFakeStore(), &mockStripeClient{})

	c, rec := newJSONContext(t, `{"store_id":"store-missing","name":"Desk Lamp","price_amount":10.99,"currency":"usd"}`)
	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateProductSkipsStripeWhenNotOnboarded(t *testing.T) {
	fs := newFakeStore()
	fs.stores["store-1"] = &model.Store{ID: "store-1", MerchantID: "user-1"}
	fs.profiles["user-1"] = &model.Profile{ID: "user-1", Email: "owner@example.com"}
	stripeMock := &mockStripeClient{}
	h := NewProductHandler(fs, fs, stripeMock)

	c, rec := newJSONContext(t, `{"store_id":"store-1","name":"Desk Lamp","price_amount":10.99,"currency":"usd"}`)
	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	if len(stripeMock.productAccounts) != 0 {
		t.Fatal("no Stripe product should be created for an un-onboarded merchant")
	}
	if len(fs.products) != 1 {
		t.Fatalf("expected one local product, got %d", len(fs.products))
	}
	if fs.products[0].StripeProductID != nil || fs.products[0].StripeDefaultPriceID != nil {
		t.Fatal("locally saved product must not carry Stripe ids")
	}

	body := decodeBody(t, rec)
	if body["stripe_skipped"] != true {
		t.Errorf("stripe_skipped: got %v, want true", body["stripe_skipped"])
	}
}

func TestCreateProductSyncsToConnectedAccount(t *testing.T) {
	fs := newFakeStore()
	fs.stores["store-1"] = &model.Store{ID: "store-1", MerchantID: "user-1"}
	fs.profiles["user-1"] = &model.Profile{
		ID:                            "user-1",
		Email:                         "owner@example.com",
		StripeAccountID:               strPtr("acct_merchant"),
		StripeAccountDetailsSubmitted: true,
	}
	stripeMock := &mockStripeClient{}
	h := NewProductHandler(fs, fs, stripeMock)

	c, rec := newJSONContext(t, `{"store_id":"store-1","name":"Desk Lamp","description":"Warm light","price_amount":10.99,"currency":"USD"}`)
	if err := h.CreateProduct(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	if len(stripeMock.productAccounts) != 1 || stripeMock.productAccounts[0] != "acct_merchant" {
		t.Fatalf("product accounts: got %v, want [acct_merchant]", stripeMock.productAccounts)
	}
	input := stripeMock.productInputs[0]
	if input.UnitAmount != 1099 {
		t.Errorf("unit amount: got %d, want 1099", input.UnitAmount)
	}
	if input.Currency != "usd" {
		t.Errorf("currency: got %q, want %q", input.Currency, "usd")
	}

	if len(fs.products) != 1 {
		t.Fatalf("expected one persisted product, got %d", len(fs.products))
	}
	saved := fs.products[0]
	if saved.StripeProductID == nil || *saved.StripeProductID != "prod_test_123" {
		t.Errorf("stripe product id not persisted: %+v", saved)
	}
	if saved.StripeDefaultPriceID == nil || *saved.StripeDefaultPriceID != "price_test_123" {
		t.Errorf("stripe price id not persisted: %+v", saved)
	}

	body := decodeBody(t, rec)
	if body["stripe_skipped"] != false {
		t.Errorf("stripe_skipped: got %v, want false", body["stripe_skipped"])
	}
	if body["stripe_default_price_id"] != "price_test_123" {
		t.Errorf("stripe_default_price_id: got %v", body["stripe_default_price_id"])
	}
}
