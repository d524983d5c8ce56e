package httpsession

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginExtractsCSRFAndPosts(t *testing.T) {
	var gotCSRF, gotUser string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<form><input name="csrf_token" value="tok123"></form>`)
			return
		}
		r.ParseForm()
		gotCSRF = r.FormValue("csrf_token")
		gotUser = r.FormValue("username")
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := NewManager()
	m.SetBaseURL("proj1", srv.URL)
	if err := m.Login("proj1", "/login", Credentials{Username: "alice", Password: "pw"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotCSRF != "tok123" {
		t.Errorf("gotCSRF = %q, want tok123", gotCSRF)
	}
	if gotUser != "alice" {
		t.Errorf("gotUser = %q, want alice", gotUser)
	}
}

func TestTestEndpointDetectsAuthNeededOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewManager()
	m.SetBaseURL("proj2", srv.URL)
	probe, err := m.TestEndpoint("proj2", http.MethodGet, "/api/widgets")
	if err != nil {
		t.Fatalf("TestEndpoint: %v", err)
	}
	if !probe.AuthNeeded {
		t.Errorf("expected AuthNeeded=true on 401")
	}
}

func TestTestEndpointDetectsLoginFormBodyHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><form id="login">please login</form></body></html>`)
	}))
	defer srv.Close()

	m := NewManager()
	m.SetBaseURL("proj3", srv.URL)
	probe, err := m.TestEndpoint("proj3", http.MethodGet, "/")
	if err != nil {
		t.Fatalf("TestEndpoint: %v", err)
	}
	if !probe.AuthNeeded {
		t.Errorf("expected AuthNeeded=true on login-form body")
	}
}

func TestEnsureSessionNoopsWhenNotLoggedIn(t *testing.T) {
	m := NewManager()
	m.SetBaseURL("proj4", "http://example.invalid")
	if err := m.EnsureSession("proj4", "/login"); err != nil {
		t.Fatalf("expected noop, got %v", err)
	}
}

func TestClearSessionRemovesCachedSession(t *testing.T) {
	m := NewManager()
	m.SetBaseURL("proj5", "http://example.invalid")
	m.ClearSession("proj5")
	if _, ok := m.sessions.Get("proj5"); ok {
		t.Errorf("expected session to be cleared")
	}
}
