package chartapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/healthdash/internal/app/features/errors"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/healthdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, api *testutil.FakeAPI, summaryRemote bool) http.Handler {
	t.Helper()
	sm := testutil.NewSessionManager(t)
	h := NewHandler(
		testutil.NewBackend(t, api.URL),
		errors.NewUpstream(sm, nil, errors.NewErrorLogger(zap.NewNop())),
		healthdata.DefaultOptions(),
		summaryRemote,
		zap.NewNop(),
	)
	return Routes(h, sm)
}

func getJSON(t *testing.T, h http.Handler, target string, user testutil.TestUser, out any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, user))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestDaily(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	var body struct {
		Days       []healthdata.DayInfo        `json:"days"`
		Rows       []map[string]any            `json:"rows"`
		Stats      map[string]healthdata.Stats `json:"stats"`
		Sleep      []healthdata.SleepSlice     `json:"sleepBreakdown"`
		Parameters []healthdata.Parameter      `json:"parameters"`
	}
	rec := getJSON(t, h, "/chart/daily", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "2024-01-15", body.Rows[0]["date"])
	assert.Equal(t, "Day 1", body.Rows[0]["day"])
	assert.Equal(t, float64(120), body.Rows[0]["systolic"])
	assert.Len(t, body.Days, 2)
	assert.Len(t, body.Parameters, len(healthdata.Parameters()))
	assert.Equal(t, 2, body.Stats[healthdata.KeySystolic].Count)
	assert.NotEmpty(t, body.Sleep)
}

func TestHourly(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	var body HourlyResponse
	rec := getJSON(t, h, "/chart/hourly?date=2024-01-15", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "2024-01-15", body.Date)
	assert.Equal(t, "Day 1", body.Day)
	require.NotEmpty(t, body.Slots)
	for _, s := range body.Slots {
		assert.Equal(t, "2024-01-15", s.Date)
	}
}

func TestHourly_BadDate(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	for _, target := range []string{"/chart/hourly", "/chart/hourly?date=yesterday", "/chart/hourly?date=2024-13-40"} {
		rec := getJSON(t, h, target, testutil.ParticipantUser(), nil)
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, `"bad_request"`)
	}
}

func TestHourly_UnknownDate(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	var body HourlyResponse
	rec := getJSON(t, h, "/chart/hourly?date=2023-06-01", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	assert.Empty(t, body.Day)
	assert.NotNil(t, body.Slots)
	assert.Empty(t, body.Slots)
}

func TestTimeline(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	var body HourlyResponse
	rec := getJSON(t, h, "/chart/timeline", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	assert.Len(t, body.Days, 2)
	require.NotEmpty(t, body.Slots)
	assert.Equal(t, "2024-01-15", body.Slots[0].Date)
}

func TestMeals(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	var body healthdata.MealSummary
	rec := getJSON(t, h, "/chart/meals", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	assert.Len(t, body.Entries, 2)
	assert.Len(t, body.PerDay, 2)
	assert.Len(t, body.PerOutlet, 2)
}

func TestBaseline(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	var body healthdata.Baseline
	rec := getJSON(t, h, "/chart/baseline", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	require.NotNil(t, body.Anthro)
	assert.Equal(t, "nurse", body.Anthro.FilledBy)
	assert.NotEmpty(t, body.Lung)
}

func TestSummary(t *testing.T) {
	for _, remote := range []bool{false, true} {
		h := newHandler(t, testutil.NewFakeAPI(t), remote)

		var body map[string]any
		rec := getJSON(t, h, "/my-summary", testutil.ParticipantUser(), &body)

		rec.AssertStatus(t, http.StatusOK)
		bp, ok := body["blood_pressure_latest"].(map[string]any)
		require.True(t, ok, "remote=%v body=%v", remote, body)
		assert.Equal(t, float64(124), bp["systolic"])
		assert.Contains(t, body, "lung_metrics")
	}
}

func TestNoExportYet(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetPayload("")
	h := newHandler(t, api, false)

	var body DailyResponse
	rec := getJSON(t, h, "/chart/daily", testutil.ParticipantUser(), &body)

	rec.AssertStatus(t, http.StatusOK)
	assert.Empty(t, body.Rows)
}

func TestUpstreamDown(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.SetDown(true)
	h := newHandler(t, api, false)

	rec := getJSON(t, h, "/chart/daily", testutil.ParticipantUser(), nil)

	rec.AssertStatus(t, http.StatusBadGateway)
	rec.AssertContains(t, `"upstream_error"`)
}

func TestRejectedToken(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)
	user := testutil.ParticipantUser()
	user.Token = "revoked"

	rec := getJSON(t, h, "/chart/daily", user, nil)

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, `"session_expired"`)
}

func TestRequiresSession(t *testing.T) {
	h := newHandler(t, testutil.NewFakeAPI(t), false)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/daily", nil))

	rec.AssertStatus(t, http.StatusUnauthorized)
}
