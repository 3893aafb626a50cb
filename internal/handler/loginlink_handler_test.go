package handler

import (
	"net/http"
	"testing"

	"payments-service/internal/model"
)

func TestCreateLoginLinkMissingUserID(t *testing.T) {
	h := NewLoginLinkHandler(newFakeStore(), &mockStripeClient{})

	c, rec := newJSONContext(t, `{}`)
	if err := h.CreateLoginLink(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateLoginLinkUnknownProfile(t *testing.T) {
	h := NewLoginLinkHandler(newFakeStore(), &mockStripeClient{})

	c, rec := newJSONContext(t, `{"user_id":"user-missing"}`)
	if err := h.CreateLoginLink(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateLoginLinkNoConnectedAccount(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["user-1"] = &model.Profile{ID: "user-1", Email: "owner@example.com"}
	stripeMock := &mockStripeClient{}
	h := NewLoginLinkHandler(fs, stripeMock)

	c, rec := newJSONContext(t, `{"user_id":"user-1"}`)
	if err := h.CreateLoginLink(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(stripeMock.loginLinkCalls) != 0 {
		t.Fatal("no login link should be minted without a connected account")
	}
}

func TestCreateLoginLinkSuccess(t *testing.T) {
	fs := newFakeStore()
	fs.profiles["user-1"] = &model.Profile{
		ID:              "user-1",
		Email:           "owner@example.com",
		StripeAccountID: strPtr("acct_1"),
	}
	stripeMock := &mockStripeClient{}
	h := NewLoginLinkHandler(fs, stripeMock)

	c, rec := newJSONContext(t, `{"user_id":"user-1"}`)
	if err := h.CreateLoginLink(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if len(stripeMock.loginLinkCalls) != 1 || stripeMock.loginLinkCalls[0] != "acct_1" {
		t.Fatalf("login link calls: got %v, want [acct_1]", stripeMock.loginLinkCalls)
	}

	body := decodeBody(t, rec)
	if body["url"] != "https://connect.stripe.com/express_login/acct_1" {
		t.Errorf("url: got %v", body["url"])
	}
}
