package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New("sid", NewMemoryStore(), time.Hour)

	type payload struct{ Code string }
	if err := s.SetJSON(ctx, "p", payload{Code: "12345"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := s.TakeJSON(ctx, "p", &got); err != nil {
		t.Fatalf("take: %v", err)
	}
	if got.Code != "12345" {
		t.Errorf("got %+v", got)
	}
	if err := s.TakeJSON(ctx, "p", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected consumed value, got %v", err)
	}
}

func TestMiddlewareIssuesAndReusesCookie(t *testing.T) {
	store := NewMemoryStore()
	var seen []string
	h := Middleware(store, time.Hour, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		if !ok {
			t.Fatal("no session in context")
		}
		seen = append(seen, s.ID)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatal("missing httponly session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Errorf("session not reused: %v", seen)
	}
}

func TestMiddlewareReplacesMalformedCookie(t *testing.T) {
	var id string
	h := Middleware(NewMemoryStore(), time.Hour, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		id = s.ID
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "../../etc"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if id == "" || id == "../../etc" {
		t.Errorf("malformed session id accepted: %q", id)
	}
}
