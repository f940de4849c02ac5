package deployplatform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, teamID string, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("vc_test", teamID, srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	return c
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "team-x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/user" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer vc_test" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"user":{"id":"u5","username":"sam","email":"sam@example.com","avatar":"a1"}}`)
	}))

	identity, err := c.Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity() err = %v", err)
	}
	if identity.AccountID != "u5" || identity.AccountName != "sam" || identity.TeamID != "team-x" {
		t.Errorf("Identity() = %+v", identity)
	}
}

func TestSync_ScopesToTeam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		teamID     string
		wantTeamID string
	}{
		{name: "personal scope", teamID: "", wantTeamID: ""},
		{name: "team scope", teamID: "team-x", wantTeamID: "team-x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, tt.teamID, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v6/deployments" {
					http.NotFound(w, r)
					return
				}
				if got := r.URL.Query().Get("teamId"); got != tt.wantTeamID {
					http.Error(w, "bad team scope", http.StatusBadRequest)
					return
				}
				fmt.Fprint(w, `{"deployments":[{"uid":"d1"},{"uid":"d2"}]}`)
			}))

			report, err := c.Sync(context.Background())
			if err != nil {
				t.Fatalf("Sync() err = %v", err)
			}
			if report.ItemsSynced != 2 {
				t.Errorf("ItemsSynced = %d, want 2", report.ItemsSynced)
			}
		})
	}
}
