package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/purchases/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1}]`)
	}))
	defer server.Close()

	raw, err := NewClient(server.URL+"/", 5*time.Second).Get(context.Background(), "/api/purchases/", "tok")

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(raw))
}

func TestClientGetWithoutTokenOmitsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.False(t, present)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).Get(context.Background(), "/api/villes/", "")
	require.NoError(t, err)
}

func TestClientRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"phone is invalid"}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).Post(context.Background(), "/api/purchases/", "tok", []byte(`{}`), "application/json")

	var rej *RemoteRejected
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Equal(t, "phone is invalid", rej.Detail)
	assert.Contains(t, rej.Body, "phone is invalid")
	assert.False(t, IsUnauthorized(err))
}

func TestClientRejectedPlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).Get(context.Background(), "/api/sales/", "")

	var rej *RemoteRejected
	require.ErrorAs(t, err, &rej)
	assert.Empty(t, rej.Detail)
	assert.Contains(t, err.Error(), "boom")
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, 5*time.Second).Get(context.Background(), "/api/purchases/", "tok")

	var netErr *NetworkUnavailable
	assert.ErrorAs(t, err, &netErr)
}

func TestClientTimeoutIsNetworkUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, 50*time.Millisecond).Get(context.Background(), "/api/purchases/", "tok")

	var netErr *NetworkUnavailable
	assert.ErrorAs(t, err, &netErr)
}

func TestClientCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(server.URL, 5*time.Second).Get(ctx, "/api/purchases/", "tok")

	var netErr *NetworkUnavailable
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).Get(context.Background(), "/api/purchases/", "tok")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClientPostPassesContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "multipart/form-data; boundary=xyz", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7}`)
	}))
	defer server.Close()

	raw, err := NewClient(server.URL, 5*time.Second).Post(context.Background(), "/api/purchases/", "tok", []byte("--xyz--"), "multipart/form-data; boundary=xyz")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(raw))
}

func TestClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/token/", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["username"] != "agent" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access":"a1","refresh":"r1"}`)
	}))
	defer server.Close()
	client := NewClient(server.URL, 5*time.Second)

	tokens, err := client.Login(context.Background(), "agent", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a1", tokens.Access)
	assert.Equal(t, "r1", tokens.Refresh)

	_, err = client.Login(context.Background(), "agent", "wrong")
	assert.True(t, IsUnauthorized(err))
}

func TestClientRefreshAccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/token/refresh/", r.URL.Path)
		_, _ = io.WriteString(w, `{"access":"a2"}`)
	}))
	defer server.Close()

	access, err := NewClient(server.URL, 5*time.Second).RefreshAccess(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", access)
}

func TestClientLoginWithoutAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 5*time.Second).Login(context.Background(), "agent", "secret")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
