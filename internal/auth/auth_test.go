package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPasswordRoundTrip(t *testing.T) {
	svc, err := NewService("test-secret", 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	hash, err := svc.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("password stored in plaintext")
	}
	if !svc.CheckPassword(hash, "correct horse battery") {
		t.Errorf("valid password rejected")
	}
	if svc.CheckPassword(hash, "wrong password") {
		t.Errorf("invalid password accepted")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	svc, _ := NewService("test-secret", 0)
	if _, err := svc.HashPassword(""); err == nil {
		t.Errorf("empty password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	token, err := svc.IssueToken("user-1", "admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	identity, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.UserID != "user-1" || identity.Role != "admin" {
		t.Errorf("identity = %+v", identity)
	}
	if !identity.IsAdmin() {
		t.Errorf("admin role not recognized")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer, _ := NewService("secret-a", time.Hour)
	verifier, _ := NewService("secret-b", time.Hour)
	token, err := issuer.IssueToken("user-1", "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Errorf("token verified with wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	svc, _ := NewService("test-secret", -time.Hour)
	// A negative ttl falls back to the default, so issue with a service whose
	// ttl already passed via a direct construction.
	svc.ttl = -time.Minute
	token, err := svc.IssueToken("user-1", "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Errorf("expired token accepted")
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService("   ", 0); err == nil {
		t.Errorf("blank secret accepted")
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	svc, _ := NewService("test-secret", time.Hour)
	token, err := svc.IssueToken("user-7", "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var seen *Identity
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentIdentity(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.UserID != "user-7" {
		t.Fatalf("identity not attached: %+v", seen)
	}

	// No token passes through anonymously.
	seen = &Identity{UserID: "stale"}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != nil {
		t.Errorf("anonymous request carried identity %+v", seen)
	}

	// A garbage token also passes through anonymously.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Errorf("garbage token carried identity %+v", seen)
	}
}
