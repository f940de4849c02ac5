package sourcehost

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// The go-github client rewrites a custom base URL onto the enterprise API
// prefix, so the stub serves everything under /api/v3/.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("gho_test", srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	return c
}

func TestNew_RequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := New("  ", "", nil); err == nil {
		t.Fatal("New() err = nil, want token error")
	}
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/user" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer gho_test" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":7,"login":"octo","email":"octo@example.com","avatar_url":"https://img.example/octo"}`)
	}))

	identity, err := c.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity() err = %v", err)
	}
	if identity.AccountID != "7" || identity.AccountName != "octo" || identity.AccountEmail != "octo@example.com" {
		t.Errorf("Identity() = %+v", identity)
	}
}

func TestSync_FollowsLinkPagination(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/user/repos" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/user/repos?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"id":1,"name":"alpha"},{"id":2,"name":"beta"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":3,"name":"gamma"}]`)
		default:
			http.Error(w, "bad page", http.StatusBadRequest)
		}
	}))

	report, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() err = %v", err)
	}
	if report.ItemsSynced != 3 {
		t.Errorf("ItemsSynced = %d, want 3", report.ItemsSynced)
	}
	if len(report.Errors) != 0 {
		t.Errorf("Errors = %v, want none", report.Errors)
	}
}

func TestSync_LaterPageFailureKeepsProgress(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/user/repos?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[{"id":1,"name":"alpha"}]`)
	}))

	report, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() err = %v, want progress kept", err)
	}
	if report.ItemsSynced != 1 {
		t.Errorf("ItemsSynced = %d, want 1", report.ItemsSynced)
	}
	if len(report.Errors) != 1 {
		t.Errorf("Errors = %v, want the page failure recorded", report.Errors)
	}
}
