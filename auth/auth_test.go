package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)
	res := w.Result()
	cookies := res.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie got %d", len(cookies))
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	uid, ok := ParseSession(r)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42 got %d ok=%v", uid, ok)
	}
}

func TestParseSessionRejectsTamperedCookie(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 7)
	c := w.Result().Cookies()[0]
	c.Value = "8." + c.Value[len("7."):] // different uid, old signature
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	if _, ok := ParseSession(r); ok {
		t.Fatal("tampered cookie accepted")
	}
}

func TestRequireAuthWithoutSession(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRequireAuthVerifierRejectsDeletedUser(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return false })
	t.Cleanup(func() { SetUserVerifier(nil) })
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	cw := httptest.NewRecorder()
	CreateSession(cw, 9)
	r := httptest.NewRequest(http.MethodGet, "/projects", nil)
	r.AddCookie(cw.Result().Cookies()[0])
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
