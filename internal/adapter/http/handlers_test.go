package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	adapthttp "fitcore/internal/adapter/http"
	"fitcore/internal/adapter/memory"
	"fitcore/internal/app"
	"fitcore/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	srv     *httptest.Server
	client  *http.Client
	metrics *metrics.Manager
}

func newTestEnv(t *testing.T, withAuth bool) *testEnv {
	t.Helper()

	store := memory.New()
	goals := app.NewGoalsService(store)
	svc := adapthttp.Services{
		Progress: app.NewProgressService(store),
		Goals:    goals,
		Ledger:   app.NewLedgerService(store, goals).InLocation(time.UTC),
		Auth:     app.NewAuthService(store, store.NewSessionRepo()),
	}

	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>fitcore</html>"), 0o600))

	reg := prometheus.NewRegistry()
	m := metrics.NewManager("fitcore", "test_server", reg)
	s := adapthttp.New(svc, m, webDir).WithGatherer(reg)
	if !withAuth {
		s = s.WithoutAuth()
	}

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		srv.Client().CloseIdleConnections()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	return &testEnv{srv: srv, client: client, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func sampleProgram() map[string]any {
	return map[string]any{
		"id":   "p1",
		"name": "Strength",
		"goal": "bulking",
		"weeks": []any{
			map[string]any{"number": 1, "workouts": []any{
				map[string]any{"id": "push", "name": "Push"},
				map[string]any{"id": "pull", "name": "Pull", "exercises": []any{
					map[string]any{"id": "row", "name": "Row", "sets": 3, "reps": "8-10"},
				}},
			}},
			map[string]any{"number": 2, "locked": true, "workouts": []any{
				map[string]any{"id": "legs", "name": "Legs"},
			}},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestSPAFallback(t *testing.T) {
	env := newTestEnv(t, false)

	resp, err := env.client.Get(env.srv.URL + "/programs/p1")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "fitcore")
}

func TestProgramFlow(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.do(t, http.MethodPost, "/api/programs", sampleProgram())
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	weeks := body["weeks"].([]any)
	require.Len(t, weeks, 2)
	assert.NotEmpty(t, weeks[0].(map[string]any)["id"], "missing ids are generated")

	resp, body = env.do(t, http.MethodGet, "/api/programs/p1/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["activeWeek"])
	assert.Equal(t, float64(0), body["progress"].(map[string]any)["percentage"])

	resp, body = env.do(t, http.MethodPost, "/api/programs/p1/workouts/legs/complete", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "week 2 is still locked")
	assert.Contains(t, body["error"], "locked")

	resp, _ = env.do(t, http.MethodPost, "/api/programs/p1/workouts/push/complete", map[string]any{"done": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = env.do(t, http.MethodPost, "/api/programs/p1/exercises/row/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// week 1 is done so week 2 opened up
	weeks = body["weeks"].([]any)
	assert.Equal(t, true, weeks[0].(map[string]any)["completed"])
	assert.Equal(t, false, weeks[1].(map[string]any)["locked"])
	assert.Equal(t, float64(2), body["activeWeek"])
	assert.Equal(t, float64(67), body["progress"].(map[string]any)["percentage"])

	resp, _ = env.do(t, http.MethodPost, "/api/programs/p1/workouts/legs/complete", map[string]any{"done": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.CounterWorkoutsCompleted))

	resp, body = env.do(t, http.MethodGet, "/api/programs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 1)
}

func TestProgramErrors(t *testing.T) {
	env := newTestEnv(t, false)
	resp, _ := env.do(t, http.MethodPost, "/api/programs", sampleProgram())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown program", http.MethodGet, "/api/programs/nope", nil, http.StatusNotFound},
		{"unknown workout", http.MethodPost, "/api/programs/p1/workouts/nope/complete", nil, http.StatusNotFound},
		{"week out of range", http.MethodPut, "/api/programs/p1/weeks/9/lock", map[string]any{"locked": true}, http.StatusNotFound},
		{"week not a number", http.MethodPut, "/api/programs/p1/weeks/two/lock", map[string]any{"locked": true}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/programs", map[string]any{"name": "x", "goal": "cutting", "color": "red"}, http.StatusBadRequest},
		{"bad goal", http.MethodPost, "/api/programs", map[string]any{"name": "x", "goal": "shredding"}, http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "/api/programs", nil, http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := env.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestLockWeek(t *testing.T) {
	env := newTestEnv(t, false)
	resp, _ := env.do(t, http.MethodPost, "/api/programs", sampleProgram())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPut, "/api/programs/p1/weeks/2/lock", map[string]any{"locked": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["weeks"].([]any)[1].(map[string]any)["locked"])
}

func TestProfileAndGoals(t *testing.T) {
	env := newTestEnv(t, false)

	resp, _ := env.do(t, http.MethodGet, "/api/goals", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.do(t, http.MethodPut, "/api/profile", map[string]any{
		"weight":        80,
		"height":        180,
		"ageYears":      30,
		"activityLevel": "moderate",
		"goal":          "cutting",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "kg", body["weightUnit"])

	resp, body = env.do(t, http.MethodGet, "/api/goals", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1780), body["bmr"])
	assert.Equal(t, float64(2207), body["calorieTarget"])
	assert.Equal(t, "normal", body["bmiClass"])

	resp, _ = env.do(t, http.MethodPut, "/api/profile", map[string]any{
		"weight": -1, "height": 180, "ageYears": 30, "activityLevel": "moderate", "goal": "cutting",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNutritionLedger(t *testing.T) {
	env := newTestEnv(t, false)

	entry := func(name, meal string, kcal float64, at string) map[string]any {
		return map[string]any{
			"foodName":   name,
			"amount":     100,
			"unit":       "g",
			"meal":       meal,
			"consumedAt": at,
			"nutrition":  map[string]any{"calories": kcal, "protein": 10, "carbs": 20, "fat": 5, "fiber": 2},
		}
	}

	resp, body := env.do(t, http.MethodPost, "/api/nutrition/entries", entry("Oats", "breakfast", 380, "2026-03-02T08:00:00Z"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "2026-03-02", body["day"])
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	oatsID := entries[0].(map[string]any)["id"].(string)
	assert.NotEmpty(t, oatsID)

	resp, _ = env.do(t, http.MethodPost, "/api/nutrition/entries", entry("Rice", "lunch", 520, "2026-03-02T12:30:00Z"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/nutrition/entries", entry("Toast", "breakfast", 200, "2026-03-04T08:00:00Z"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.CounterFoodEntries.WithLabelValues("breakfast")))

	resp, body = env.do(t, http.MethodGet, "/api/nutrition/day?date=2026-03-02", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["entries"])
	assert.Equal(t, float64(900), summary["total"].(map[string]any)["calories"])
	assert.Nil(t, summary["comparison"], "no profile means no goals")
	assert.Len(t, summary["meals"], 2)

	resp, body = env.do(t, http.MethodGet, "/api/nutrition/range?from=2026-03-01&to=2026-03-04", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	days := body["days"].([]any)
	require.Len(t, days, 4)
	assert.Equal(t, float64(0), days[0].(map[string]any)["entries"])
	assert.Equal(t, float64(2), days[1].(map[string]any)["entries"])
	assert.Equal(t, float64(1), days[3].(map[string]any)["entries"])

	resp, _ = env.do(t, http.MethodDelete, "/api/nutrition/entries/"+oatsID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, "/api/nutrition/entries/"+oatsID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/nutrition/day?date=2026-03-02", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(520), body["log"].(map[string]any)["total"].(map[string]any)["calories"])
}

func TestNutritionValidation(t *testing.T) {
	env := newTestEnv(t, false)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"bad date", http.MethodGet, "/api/nutrition/day?date=03/02/2026", nil},
		{"reversed range", http.MethodGet, "/api/nutrition/range?from=2026-03-04&to=2026-03-01", nil},
		{"missing range", http.MethodGet, "/api/nutrition/range", nil},
		{"unknown meal", http.MethodPost, "/api/nutrition/entries", map[string]any{
			"foodName": "Cake", "meal": "elevenses", "nutrition": map[string]any{"calories": 300},
		}},
		{"negative calories", http.MethodPost, "/api/nutrition/entries", map[string]any{
			"foodName": "Cake", "meal": "snack", "nutrition": map[string]any{"calories": -1},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := env.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, http.MethodGet, "/api/health", nil)

	resp, err := env.client.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), `fitcore_test_server_request{method="GET",status="200"}`)
	assert.Contains(t, string(b), "fitcore_test_server_request_duration_seconds")
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, true)

	resp, _ := env.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/auth/config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["needs_setup"])
	assert.Equal(t, false, body["sso_enabled"])

	creds := map[string]any{"username": "admin", "password": "changeme"}
	resp, _ = env.do(t, http.MethodPost, "/api/auth/setup", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/auth/setup", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "authenticated, no profile yet")

	resp, _ = env.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestForwardAuth(t *testing.T) {
	env := newTestEnv(t, true)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/programs", nil)
	require.NoError(t, err)
	req.Header.Set("Remote-User", "alice")
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSSODisabled(t *testing.T) {
	env := newTestEnv(t, true)

	resp, _ := env.do(t, http.MethodGet, "/api/auth/sso/login", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/api/auth/sso/callback?state=x", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
