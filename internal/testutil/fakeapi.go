package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials accepted by FakeAPI.
const (
	ParticipantPassword = "password123"
	AdminPassword       = "admin123"
)

// Tokens issued by FakeAPI. They are HS256 JWTs carrying username and role,
// shaped like the health API's own tokens.
var (
	ParticipantToken = signToken("participant-1", "participant")
	AdminToken       = signToken("admin", "admin")
)

func signToken(username, role string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}).SignedString([]byte("fake-health-api-signing-key"))
	if err != nil {
		panic(err)
	}
	return tok
}

// SamplePayload is a small my-data payload spanning two days.
const SamplePayload = `{
  "blood_pressure": {"time_series": [
    {"date": "2024-01-15T08:00:00", "systolic": 120, "diastolic": 80, "pulse": 70},
    {"date": "2024-01-16T08:10:00", "systolic": 124, "diastolic": 82}
  ]},
  "heart_rate": {"time_series": [
    {"date": "2024-01-15T09:00:00", "averageHeartRate": 72},
    {"date": "2024-01-16T09:00:00", "averageHeartRate": 75}
  ]},
  "sleep": {"time_series": [
    {"date": "2024-01-15", "totalSleep": 420, "deepSleep": 90, "remSleep": 100, "lightSleep": 230}
  ]},
  "spo2": {"time_series": [{"date": "2024-01-15T10:00:00", "spo2": 97}]},
  "steps": {"time_series": [{"date": "2024-01-15T12:00:00", "steps": 8400}]},
  "temperature": {"time_series": [{"date": "2024-01-16T07:00:00", "temperature": 36.7}]},
  "meals": {"time_series": [
    {"date_str": "2024-01-15", "time_str": "12:30", "dish": "Rice <b>bowl</b>", "outlet": "Cafe A"},
    {"date_str": "2024-01-16", "time_str": "18:00", "dish": "Soup", "outlet": "Cafe B"}
  ]},
  "anthro": {
    "time_series": [{"date": "2024-01-15", "height_cm": 170, "weight_kg": 65, "filledBy": "nurse"}],
    "metrics": {"bmi": {"mean": 22.5}}
  },
  "lung_function": {
    "time_series": [],
    "metrics": {"fev1": {"mean": 3.1, "min": 2.9, "max": 3.3}, "fev1_fvc": {"mean": 0.8}}
  }
}`

// FakeAPI is an in-process stand-in for the health API.
type FakeAPI struct {
	*httptest.Server

	mu      sync.Mutex
	payload string
	users   []map[string]string
	down    bool
	Deleted []string
	Resets  map[string]string
}

// NewFakeAPI starts a FakeAPI serving SamplePayload. It is closed on cleanup.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		payload: SamplePayload,
		users: []map[string]string{
			{"id": "1", "username": "admin", "participant_id": "", "role": "admin", "created_at": "2024-01-01T00:00:00"},
			{"id": "2", "username": "participant-1", "participant_id": "P001", "role": "participant", "created_at": "2024-01-02T00:00:00"},
		},
		Resets: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", f.login)
	mux.HandleFunc("GET /api/my-data", f.auth(false, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.payload == "" {
			http.Error(w, `{"message":"No data for participant"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(f.payload))
	}))
	mux.HandleFunc("GET /api/my-summary", f.auth(false, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"blood_pressure_latest":{"systolic":124},"lung_metrics":{}}`))
	}))
	mux.HandleFunc("GET /admin/users", f.auth(true, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"users": f.users})
	}))
	mux.HandleFunc("POST /admin/users/reset-password", f.auth(true, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !f.hasUser(body["username"]) {
			http.Error(w, `{"message":"User not found"}`, http.StatusNotFound)
			return
		}
		f.mu.Lock()
		f.Resets[body["username"]] = body["new_password"]
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"Password reset"}`))
	}))
	mux.HandleFunc("DELETE /admin/users/{username}", f.auth(true, func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("username")
		if !f.hasUser(name) {
			http.Error(w, `{"message":"User not found"}`, http.StatusNotFound)
			return
		}
		f.mu.Lock()
		f.Deleted = append(f.Deleted, name)
		kept := f.users[:0]
		for _, u := range f.users {
			if u["username"] != name {
				kept = append(kept, u)
			}
		}
		f.users = kept
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"User deleted"}`))
	}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.down
		f.mu.Unlock()
		if down {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

// SetPayload replaces the my-data body. An empty body makes my-data answer 404,
// the way the health API does for a participant with no export yet.
func (f *FakeAPI) SetPayload(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payload = body
}

// SetDown makes every endpoint answer 503.
func (f *FakeAPI) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *FakeAPI) hasUser(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u["username"] == name {
			return true
		}
	}
	return false
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)
	var token string
	switch {
	case body["username"] == "participant-1" && body["password"] == ParticipantPassword:
		token = ParticipantToken
	case body["username"] == "admin" && body["password"] == AdminPassword:
		token = AdminToken
	default:
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token, "message": "Login successful"})
}

func (f *FakeAPI) auth(adminOnly bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + AdminToken:
		case "Bearer " + ParticipantToken:
			if adminOnly {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		default:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}
