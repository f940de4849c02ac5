package baas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("anon-key", "sbp_token", srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	return c
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/project" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") != "anon-key" || r.Header.Get("Authorization") != "Bearer sbp_token" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id":"proj1","name":"taskdeck","organization":"acme"}`)
	}))

	identity, err := c.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity() err = %v", err)
	}
	if identity.AccountID != "proj1" || identity.WorkspaceName != "acme" {
		t.Errorf("Identity() = %+v", identity)
	}
}

func TestSync_OneListingFailureIsPartial(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/tables":
			fmt.Fprint(w, `[{"name":"users"},{"name":"tasks"}]`)
		case "/v1/functions":
			http.Error(w, "server error", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))

	report, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() err = %v, want partial report", err)
	}
	if report.ItemsSynced != 2 {
		t.Errorf("ItemsSynced = %d, want 2", report.ItemsSynced)
	}
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], "functions") {
		t.Errorf("Errors = %v, want the functions failure recorded", report.Errors)
	}
}

func TestSync_AllListingsFail(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))

	if _, err := c.Sync(context.Background()); err == nil || !strings.Contains(err.Error(), "inventory failed") {
		t.Fatalf("Sync() err = %v, want total failure", err)
	}
}
