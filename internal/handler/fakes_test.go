package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payments-service/internal/model"
	"payments-service/internal/payment"
	"payments-service/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
)

// fakeStore implements the persistence ports in memory.
type fakeStore struct {
	profiles map[string]*model.Profile
	stores   map[string]*model.Store
	targets  map[string]*store.CheckoutTarget

	products []*model.PlatformProduct

	// attachFn overrides AttachStripeAccount when set, used to simulate a
	// lost provisioning race.
	attachFn    func(userID, accountID string) (bool, error)
	attachCalls int

	// markPaidErrs yields one error per MarkPaid call, used to simulate
	// transient write failures.
	markPaidErrs []error
	paidUsers    []string
	paidSessions []string

	seenEvents map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:   make(map[string]*model.Profile),
		stores:     make(map[string]*model.Store),
		targets:    make(map[string]*store.CheckoutTarget),
		seenEvents: make(map[string]bool),
	}
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeStore) AttachStripeAccount(ctx context.Context, userID, accountID string) (bool, error) {
	f.attachCalls++
	if f.attachFn != nil {
		return f.attachFn(userID, accountID)
	}
	profile, ok := f.profiles[userID]
	if !ok || profile.StripeAccountID != nil {
		return false, nil
	}
	profile.StripeAccountID = &accountID
	profile.StripeAccountDetailsSubmitted = false
	return true, nil
}

func (f *fakeStore) SetDetailsSubmitted(ctx context.Context, accountID string, submitted bool) error {
	for _, profile := range f.profiles {
		if profile.StripeAccountID != nil && *profile.StripeAccountID == accountID {
			profile.StripeAccountDetailsSubmitted = submitted
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) GetStore(ctx context.Context, id string) (*model.Store, error) {
	st, ok := f.stores[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return st, nil
}

func (f *fakeStore) GetCheckoutTarget(ctx context.Context, productID, storeID string) (*store.CheckoutTarget, error) {
	target, ok := f.targets[productID+"|"+storeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return target, nil
}

func (f *fakeStore) CreateProduct(ctx context.Context, product *model.PlatformProduct) error {
	if product.ID == "" {
		product.ID = "pp_fake_1"
	}
	f.products = append(f.products, product)
	return nil
}

func (f *fakeStore) MarkPaid(ctx context.Context, userID, sessionID string, paidAt time.Time) error {
	if len(f.markPaidErrs) > 0 {
		err := f.markPaidErrs[0]
		f.markPaidErrs = f.markPaidErrs[1:]
		if err != nil {
			return err
		}
	}
	f.paidUsers = append(f.paidUsers, userID)
	f.paidSessions = append(f.paidSessions, sessionID)
	return nil
}

func (f *fakeStore) Processed(ctx context.Context, eventID string) (bool, error) {
	return f.seenEvents[eventID], nil
}

func (f *fakeStore) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	f.seenEvents[eventID] = true
	return nil
}

// mockStripeClient records Stripe calls without touching the network.
type mockStripeClient struct {
	accountID string

	createAccountCalls int
	createAccountErr   error

	accountLinkCalls []string
	loginLinkCalls   []string

	sessionInputs []payment.CheckoutSessionInput
	sessionErr    error

	productAccounts []string
	productInputs   []payment.ProductInput
}

func (m *mockStripeClient) CreateExpressAccount(email, userID string) (*stripe.Account, error) {
	m.createAccountCalls++
	if m.createAccountErr != nil {
		return nil, m.createAccountErr
	}
	return &stripe.Account{ID: m.accountID}, nil
}

func (m *mockStripeClient) CreateAccountLink(accountID string) (*stripe.AccountLink, error) {
	m.accountLinkCalls = append(m.accountLinkCalls, accountID)
	return &stripe.AccountLink{URL: "https://connect.stripe.com/setup/" + accountID}, nil
}

func (m *mockStripeClient) CreateLoginLink(accountID string) (*stripe.LoginLink, error) {
	m.loginLinkCalls = append(m.loginLinkCalls, accountID)
	return &stripe.LoginLink{URL: "https://connect.stripe.com/express_login/" + accountID}, nil
}

func (m *mockStripeClient) CreateCheckoutSession(input payment.CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	m.sessionInputs = append(m.sessionInputs, input)
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	return &stripe.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.stripe.com/c/pay/cs_test_123",
	}, nil
}

func (m *mockStripeClient) CreateConnectedProduct(accountID string, input payment.ProductInput) (*stripe.Product, error) {
	m.productAccounts = append(m.productAccounts, accountID)
	m.productInputs = append(m.productInputs, input)
	return &stripe.Product{
		ID:           "prod_test_123",
		DefaultPrice: &stripe.Price{ID: "price_test_123"},
	}, nil
}

func (m *mockStripeClient) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not implemented")
}

// newJSONContext builds an echo context for a POST with a JSON body.
func newJSONContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func strPtr(s string) *string {
	return &s
}
