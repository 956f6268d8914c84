package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI is a minimal stand-in for the health API.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "participant-1" && body["password"] == "password123" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1", "message": "Login successful"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	mux.HandleFunc("GET /api/my-data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Request-ID") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"blood_pressure":{"time_series":[{"date":"2024-01-01T08:00:00","systolic":120,"diastolic":80}]}}`))
	})

	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer admin-tok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"users":[{"id":"1","username":"admin","participant_id":"","role":"admin"},{"id":"2","username":"p 1","participant_id":"P001","role":"participant"}]}`))
	})

	mux.HandleFunc("DELETE /admin/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("username") != "p 1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /admin/users/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "" || body["new_password"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, failures uint32) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:         baseURL,
		Timeout:         2 * time.Second,
		BreakerFailures: failures,
		BreakerOpenFor:  time.Minute,
	}, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5001", "ftp://example.com", "http://"} {
		_, err := New(Config{BaseURL: raw}, nil, nil)
		assert.Error(t, err, raw)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, fakeAPI(t).URL, 5)
	ctx := context.Background()

	tok, err := c.Login(ctx, "participant-1", "password123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	_, err = c.Login(ctx, "participant-1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "closed", c.BreakerState(), "rejected credentials must not count as failures")
}

func TestMyData(t *testing.T) {
	c := newTestClient(t, fakeAPI(t).URL, 5)

	p, err := c.MyData(context.Background(), "tok-1")
	require.NoError(t, err)
	require.NotNil(t, p.BloodPressure)
	require.Len(t, p.BloodPressure.TimeSeries, 1)
	v, ok := p.BloodPressure.TimeSeries[0].Number("systolic")
	assert.True(t, ok)
	assert.Equal(t, 120.0, v)

	_, err = c.MyData(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMyDataOrEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no data"}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, 5)

	_, err := c.MyData(context.Background(), "tok-1")
	assert.True(t, IsNotFound(err))

	p, err := c.MyDataOrEmpty(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestAdminCalls(t *testing.T) {
	c := newTestClient(t, fakeAPI(t).URL, 5)
	ctx := context.Background()

	users, err := c.ListUsers(ctx, "admin-tok")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "P001", users[1].ParticipantID)

	_, err = c.ListUsers(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, c.DeleteUser(ctx, "admin-tok", "p 1"))
	err = c.DeleteUser(ctx, "admin-tok", "nobody")
	assert.True(t, IsNotFound(err))

	assert.NoError(t, c.ResetPassword(ctx, "admin-tok", "p 1", "n3w-secret"))
	var se *StatusError
	err = c.ResetPassword(ctx, "admin-tok", "p 1", "")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestDeleteUser_EscapesUsernameOnce(t *testing.T) {
	tests := []struct {
		username string
		wantPath string
	}{
		{"zoë", "/admin/users/zo%C3%AB"},
		{"p 1", "/admin/users/p%201"},
		{"50%", "/admin/users/50%25"},
		{"a/b", "/admin/users/a%2Fb"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				w.WriteHeader(http.StatusOK)
			}))
			t.Cleanup(srv.Close)

			c := newTestClient(t, srv.URL, 5)
			require.NoError(t, c.DeleteUser(context.Background(), "admin-tok", tt.username))
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestDeleteUser_UnicodeName(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /admin/users/{username}", func(w http.ResponseWriter, r *http.Request) {
		got = r.PathValue("username")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, 5)
	require.NoError(t, c.DeleteUser(context.Background(), "admin-tok", "zoë"))
	assert.Equal(t, "zoë", got)
}

func TestEndpointURL_KeepsBasePath(t *testing.T) {
	c := newTestClient(t, "http://api.example.test/v1/", 5)
	assert.Equal(t, "http://api.example.test/v1/admin/users/p%201", c.endpointURL("admin", "users", "p 1"))
	assert.Equal(t, "http://api.example.test/v1/health", c.endpointURL("health"))
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.MyData(ctx, "tok")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.Equal(t, "boom", se.Body)
		assert.True(t, se.Temporary())
	}

	_, err := c.MyData(ctx, "tok")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")
	assert.Equal(t, "open", c.BreakerState())
}

func TestCanceledRequestsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.MyData(ctx, "tok")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "closed", c.BreakerState())
}

func TestPing(t *testing.T) {
	c := newTestClient(t, fakeAPI(t).URL, 5)
	assert.NoError(t, c.Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)
	assert.Error(t, newTestClient(t, down.URL, 5).Ping(context.Background()))
}
