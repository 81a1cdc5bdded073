package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"piggybank/internal/accounts"
	"piggybank/internal/storage"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	kv := storage.NewMemory()
	acc := accounts.New(kv, nil, nil)
	srv := NewServer(acc, kv, nil, nil, Options{RequestsPerMinute: 10000})
	t.Cleanup(srv.Close)
	return srv, srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func signUpDefault(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/signup", map[string]string{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign up status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestSignUpFlow(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d", rec.Code)
	}
	user := decode[userResponse](t, rec)
	if user.Email != "ada@example.com" || user.Username != "ada" {
		t.Fatalf("unexpected session user: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatal("password leaked in session response")
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/signout", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("sign out status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/session", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("session after sign out status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/signin", map[string]string{
		"email": "ada@example.com", "password": "hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sign in status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestSignUpErrors(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/signup", map[string]string{
		"email": "ada@example.com", "username": "other", "password": "hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/signup", map[string]string{
		"email": "nope", "username": "x", "password": "abc",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid sign up status = %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	for _, field := range []string{"email", "username", "password"} {
		if body.Fields[field] == "" {
			t.Errorf("missing violation for %q in %v", field, body.Fields)
		}
	}

	rec = doJSON(t, h, http.MethodPost, "/api/signin", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/transactions", map[string]string{
		"category": "RENT", "note": "", "amount": "6414", "type": "EXPENSE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body)
	}
	tx := decode[struct {
		ID     string `json:"id"`
		Label  string `json:"label"`
		Amount struct {
			Cents int64 `json:"cents"`
		} `json:"amount"`
	}](t, rec)
	if tx.Amount.Cents != -641400 {
		t.Errorf("amount cents = %d, want -641400", tx.Amount.Cents)
	}
	if tx.Label != "Rent" {
		t.Errorf("label = %q, want category fallback Rent", tx.Label)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d", rec.Code)
	}
	vm := decode[ViewModel](t, rec)
	if vm.Balance.Cents != -641400 || len(vm.Groups) != 1 {
		t.Fatalf("view = %+v", vm)
	}

	if rec := doJSON(t, h, http.MethodDelete, "/api/transactions/"+tx.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	vm = decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view", nil))
	if vm.Transactions != 0 {
		t.Fatalf("transactions after delete = %d", vm.Transactions)
	}
}

func TestViewCacheInvalidation(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	add := func(amount string) {
		rec := doJSON(t, h, http.MethodPost, "/api/transactions", map[string]string{
			"category": "FOOD", "note": "groceries", "amount": amount, "type": "EXPENSE",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("add status = %d", rec.Code)
		}
	}

	add("10")
	vm := decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view", nil))
	if vm.Balance.Cents != -1000 {
		t.Fatalf("balance = %d", vm.Balance.Cents)
	}

	// a second mutation must not serve the cached model
	add("5")
	vm = decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view", nil))
	if vm.Balance.Cents != -1500 {
		t.Fatalf("balance after second add = %d, want -1500", vm.Balance.Cents)
	}
}

func TestViewFilters(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	for _, tx := range []map[string]string{
		{"category": "OTHER", "note": "Salary", "amount": "3000", "type": "INCOME"},
		{"category": "RENT", "note": "", "amount": "6414", "type": "EXPENSE"},
	} {
		if rec := doJSON(t, h, http.MethodPost, "/api/transactions", tx); rec.Code != http.StatusCreated {
			t.Fatalf("add status = %d", rec.Code)
		}
	}

	vm := decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view?filter=EXPENSE", nil))
	if got := len(vm.Groups); got != 1 {
		t.Fatalf("expense groups = %d", got)
	}
	if vm.Groups[0].Subtotal.Cents != -641400 {
		t.Errorf("expense subtotal = %d", vm.Groups[0].Subtotal.Cents)
	}

	vm = decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view?q=salary", nil))
	if len(vm.Groups) != 1 || vm.Groups[0].Subtotal.Cents != 300000 {
		t.Fatalf("search view = %+v", vm.Groups)
	}

	if rec := doJSON(t, h, http.MethodGet, "/api/view?filter=TRANSFER", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d", rec.Code)
	}
}

func TestBadTransactionInput(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"unknown category", map[string]string{"category": "CRYPTO", "amount": "10", "type": "EXPENSE"}},
		{"zero amount", map[string]string{"category": "FOOD", "amount": "0", "type": "EXPENSE"}},
		{"garbage amount", map[string]string{"category": "FOOD", "amount": "lots", "type": "EXPENSE"}},
		{"bad type", map[string]string{"category": "FOOD", "amount": "10", "type": "TRANSFER"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/transactions", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	_, h := newTestServer(t)
	signUpDefault(t, h)

	if rec := doJSON(t, h, http.MethodPost, "/api/transactions", map[string]string{
		"category": "FOOD", "amount": "10", "type": "EXPENSE",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/reset", map[string]bool{"confirm": false}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed reset status = %d", rec.Code)
	}
	vm := decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view", nil))
	if vm.Transactions != 1 {
		t.Fatalf("transactions after refused reset = %d", vm.Transactions)
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/reset", map[string]bool{"confirm": true}); rec.Code != http.StatusNoContent {
		t.Fatalf("confirmed reset status = %d", rec.Code)
	}
	vm = decode[ViewModel](t, doJSON(t, h, http.MethodGet, "/api/view", nil))
	if vm.Transactions != 0 {
		t.Fatalf("transactions after reset = %d", vm.Transactions)
	}
}

func TestLedgerEndpointsRequireSession(t *testing.T) {
	_, h := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/view"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodDelete, "/api/transactions/123"},
		{http.MethodPost, "/api/reset"},
	}
	for _, p := range paths {
		rec := doJSON(t, h, p.method, p.path, map[string]bool{"confirm": true})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	if rec := doJSON(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rec.Code)
	}
	cats := decode[[]struct {
		Key   string `json:"key"`
		Icon  string `json:"icon"`
		Label string `json:"label"`
	}](t, rec)
	if len(cats) != 9 {
		t.Fatalf("categories = %d, want 9", len(cats))
	}
	if cats[0].Key != "FOOD" {
		t.Errorf("first category = %q, want FOOD", cats[0].Key)
	}
}
