package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the mock backend received
type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	CSRF        string
	RequestID   string
	Cookies     map[string]string
	Body        map[string]any
}

// mockBackend hands out a CSRF cookie on /csrf and records every other request
func mockBackend(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var recorded []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/csrf" {
			http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "csrf-123", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-abc", Path: "/", HttpOnly: true})
			w.WriteHeader(http.StatusNoContent)
			return
		}

		rec := recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			CSRF:        r.Header.Get(CSRFHeaderName),
			RequestID:   r.Header.Get(RequestIDHeader),
			Cookies:     map[string]string{},
		}
		for _, c := range r.Cookies() {
			rec.Cookies[c.Name] = c.Value
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}
		recorded = append(recorded, rec)

		if handler != nil {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	return server, &recorded
}

func primeCSRF(t *testing.T, c *Client) {
	t.Helper()
	resp, err := c.Get(context.Background(), "/csrf")
	require.NoError(t, err)
	resp.Body.Close()
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://nope"} {
		_, err := New(raw)
		assert.Error(t, err, "base URL %q", raw)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
	assert.Equal(t, "http://localhost:8080/oauth2/authorization/github", c.AuthorizationURL("github"))
}

func TestPost_SendsJSONWithCredentialsAndCSRF(t *testing.T) {
	server, recorded := mockBackend(t, nil)

	c, err := New(server.URL)
	require.NoError(t, err)
	primeCSRF(t, c)

	resp, err := c.Post(context.Background(), LoginPath, map[string]string{
		"email":    "a@b.com",
		"password": "secret",
	})
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, *recorded, 1)
	got := (*recorded)[0]

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, LoginPath, got.Path)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, "csrf-123", got.CSRF)
	assert.Equal(t, "session-abc", got.Cookies["JSESSIONID"])
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, map[string]any{"email": "a@b.com", "password": "secret"}, got.Body)
}

func TestCSRFHeader_AttachedWheneverCookiePresent(t *testing.T) {
	server, recorded := mockBackend(t, nil)

	c, err := New(server.URL)
	require.NoError(t, err)
	primeCSRF(t, c)

	ctx := context.Background()
	calls := []func() (*http.Response, error){
		func() (*http.Response, error) { return c.Get(ctx, UserPath) },
		func() (*http.Response, error) { return c.Post(ctx, RegisterPath, map[string]string{}) },
		func() (*http.Response, error) { return c.Logout(ctx) },
		func() (*http.Response, error) { return c.Do(ctx, http.MethodPut, "/api/profile", nil) },
	}
	for _, call := range calls {
		resp, err := call()
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, *recorded, len(calls))
	for _, rec := range *recorded {
		assert.Equal(t, "csrf-123", rec.CSRF, "%s %s", rec.Method, rec.Path)
	}
}

func TestCSRFHeader_SuppressedAndAbsent(t *testing.T) {
	server, recorded := mockBackend(t, nil)

	c, err := New(server.URL)
	require.NoError(t, err)

	// No cookie yet
	resp, err := c.Post(context.Background(), LoginPath, map[string]string{})
	require.NoError(t, err)
	resp.Body.Close()

	primeCSRF(t, c)

	resp, err = c.Get(context.Background(), UserPath, WithoutCSRF())
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, *recorded, 2)
	assert.Empty(t, (*recorded)[0].CSRF)
	assert.Empty(t, (*recorded)[1].CSRF)
}

func TestDo_NonSuccessStatusIsNotAnError(t *testing.T) {
	server, _ := mockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	})

	c, err := New(server.URL)
	require.NoError(t, err)

	resp, err := c.Post(context.Background(), LoginPath, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = ReadResult(resp)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "invalid credentials", appErr.Message)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestDo_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), UserPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestDo_MarshalFailure(t *testing.T) {
	c, err := New("http://localhost:1")
	require.NoError(t, err)

	_, err = c.Post(context.Background(), LoginPath, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNetwork))
	assert.Contains(t, err.Error(), "failed to marshal request")
}

func TestWithHeader(t *testing.T) {
	var seen string
	server, _ := mockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Client")
		w.WriteHeader(http.StatusOK)
	})

	c, err := New(server.URL)
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), UserPath, WithHeader("X-Client", "authfront"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "authfront", seen)
}

func TestWithHTTPClient_KeepsOwnJar(t *testing.T) {
	hc := &http.Client{}

	c, err := New("http://localhost:8080", WithHTTPClient(hc))
	require.NoError(t, err)

	assert.NotNil(t, c.Jar())
	assert.Nil(t, hc.Jar, "caller's client must not be mutated")
}
