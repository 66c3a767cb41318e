package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeTokens) ClearTokens(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, HTTPClient: srv.Client()}, tokens)
	t.Cleanup(func() { c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_InjectsBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}, &fakeTokens{token: "abc"})

	if _, err := c.Get(context.Background(), "/api/v1/employees", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q; want %q", gotAuth, "Bearer abc")
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID should be set")
	}
}

func TestClient_CallerAuthorizationWins(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{token: "stored"})

	h := http.Header{}
	h.Set("Authorization", "Bearer explicit")
	if _, err := c.Post(context.Background(), "/api/v1/auth/logout", nil, h); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	if gotAuth != "Bearer explicit" {
		t.Errorf("Authorization = %q; want %q", gotAuth, "Bearer explicit")
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}, &fakeTokens{})

	if _, err := c.Get(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q; want empty", gotAuth)
	}
}

func TestClient_UnauthorizedClearsTokens(t *testing.T) {
	tokens := &fakeTokens{token: "abc"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
	}, tokens)

	_, err := c.Get(context.Background(), "/api/v1/employees", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Get() error = %v; want ErrUnauthorized", err)
	}
	if tokens.cleared != 1 {
		t.Errorf("ClearTokens called %d times; want 1", tokens.cleared)
	}
	if tokens.token != "" {
		t.Errorf("token = %q; want cleared", tokens.token)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		body     map[string]any
		wantKind Kind
		wantErr  error
		wantMsg  string
	}{
		{http.StatusForbidden, map[string]any{"message": "nope"}, KindForbidden, ErrForbidden, "access denied"},
		{http.StatusNotFound, nil, KindNotFound, ErrNotFound, "resource not found"},
		{http.StatusInternalServerError, map[string]any{"message": "boom"}, KindServer, ErrServer, "server error"},
		{http.StatusBadGateway, map[string]any{"message": "upstream down"}, KindServer, ErrServer, "upstream down"},
		{http.StatusBadRequest, map[string]any{"message": "email is required"}, KindValidation, ErrValidation, "email is required"},
		{http.StatusConflict, nil, KindValidation, ErrValidation, "invalid request"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}, nil)

			_, err := c.Get(context.Background(), "/x", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v; want %v", err, tt.wantErr)
			}
			kind, ok := KindOf(err)
			if !ok || kind != tt.wantKind {
				t.Errorf("KindOf() = %q, %v; want %q", kind, ok, tt.wantKind)
			}
			var apiErr *Error
			errors.As(err, &apiErr)
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q; want %q", apiErr.Message, tt.wantMsg)
			}
			if StatusOf(err) != tt.status {
				t.Errorf("StatusOf() = %d; want %d", StatusOf(err), tt.status)
			}
		})
	}
}

func TestClient_FieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "validation failed",
			"errors":  []map[string]string{{"field": "email", "code": "INVALID", "message": "bad email"}},
		})
	}, nil)

	_, err := c.Post(context.Background(), "/api/v1/employees", map[string]string{"email": "x"}, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v; want *Error", err)
	}
	if len(apiErr.Errors) != 1 || apiErr.Errors[0].Field != "email" {
		t.Errorf("Errors = %+v; want one email error", apiErr.Errors)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	defer c.Close()

	_, err := c.Get(context.Background(), "/slow", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Get() error = %v; want ErrTimeout", err)
	}
	if errors.Is(err, ErrServer) {
		t.Error("timeout must not look like a server error")
	}
}

func TestClient_QueueWaitTimeout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxConcurrent: 1}, nil)
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Get(context.Background(), "/busy", nil)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Get(ctx, "/queued", nil)
	close(release)
	<-done

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Get() error = %v; want ErrTimeout", err)
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("queue timeout must not look like a network error")
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second}, nil)
	defer c.Close()

	_, err := c.Get(context.Background(), "/x", nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Get() error = %v; want ErrNetwork", err)
	}
	if StatusOf(err) != 0 {
		t.Errorf("StatusOf() = %d; want 0", StatusOf(err))
	}
}

func TestClient_JSONBodyAndValue(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q; want application/json", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 42})
	}, nil)

	resp, err := c.Post(context.Background(), "/x", map[string]string{"name": "A"}, nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got["name"] != "A" {
		t.Errorf("request body name = %v; want A", got["name"])
	}

	v, err := resp.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	m := v.(map[string]any)
	if n, ok := m["id"].(json.Number); !ok || n.String() != "42" {
		t.Errorf("id = %#v; want json.Number 42", m["id"])
	}
}

func TestClient_TextBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "pong")
	}, nil)

	resp, err := c.Get(context.Background(), "/ping", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	v, _ := resp.Value()
	if v != "pong" {
		t.Errorf("Value() = %v; want pong", v)
	}
}

func TestClient_Upload(t *testing.T) {
	var filename, content string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q; want multipart", r.Header.Get("Content-Type"))
		}
		f, hdr, err := r.FormFile("avatar")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		filename, content = hdr.Filename, string(data)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}, nil)

	_, err := c.Upload(context.Background(), "/api/v1/employees/1/avatar", "avatar", "me.png", strings.NewReader("PNG"), nil)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if filename != "me.png" || content != "PNG" {
		t.Errorf("uploaded %q/%q; want me.png/PNG", filename, content)
	}
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RatePerSecond: 1}, nil)
	defer c.Close()

	limited := 0
	for i := 0; i < 10; i++ {
		if _, err := c.Get(context.Background(), "/x", nil); errors.Is(err, ErrRateLimited) {
			limited++
		}
	}
	if limited == 0 {
		t.Error("expected some requests to be rate limited")
	}
}
