package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banshee-data/tomograph/internal/testutil"
	"github.com/banshee-data/tomograph/internal/tomo"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	return NewWebServer(WebServerConfig{
		Address: "localhost:0",
		Grid:    testutil.NewTestGrid(t),
		Engine:  tomo.NewEngine(),
		Nav:     tomo.NewNavigator(10),
		DB:      testutil.NewTestDB(t),
		RunID:   "test-run",
	})
}

func doJSON(t *testing.T, ws *WebServer, method, path string) (int, map[string]interface{}) {
	t.Helper()
	req := testutil.NewTestRequest(method, path)
	rec := testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s %s response: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	ws := newTestServer(t)
	code, body := doJSON(t, ws, http.MethodGet, "/healthz")
	testutil.AssertStatusCode(t, code, http.StatusOK)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestStats(t *testing.T) {
	ws := newTestServer(t)
	code, body := doJSON(t, ws, http.MethodGet, "/api/engine/stats")
	testutil.AssertStatusCode(t, code, http.StatusOK)

	if body["invariants_ok"] != true {
		t.Errorf("invariants_ok = %v", body["invariants_ok"])
	}
	counts, ok := body["active_counts"].(map[string]interface{})
	if !ok {
		t.Fatalf("active_counts missing: %v", body)
	}
	for _, ch := range []string{"primary", "verification", "transit", "derived"} {
		if counts[ch] != float64(249) {
			t.Errorf("active_counts[%s] = %v, want 249", ch, counts[ch])
		}
	}
	if body["capacity"] != float64(250) {
		t.Errorf("capacity = %v, want 250", body["capacity"])
	}
}

func TestStatsMethodNotAllowed(t *testing.T) {
	ws := newTestServer(t)
	code, _ := doJSON(t, ws, http.MethodPost, "/api/engine/stats")
	testutil.AssertStatusCode(t, code, http.StatusMethodNotAllowed)
}

func TestEventNavigation(t *testing.T) {
	ws := newTestServer(t)

	code, body := doJSON(t, ws, http.MethodPost, "/api/engine/event?e=right")
	testutil.AssertStatusCode(t, code, http.StatusOK)
	idx := body["index"].(map[string]interface{})
	if idx["j"] != float64(1) {
		t.Errorf("j after right = %v, want 1", idx["j"])
	}

	// Down from the origin wraps.
	_, body = doJSON(t, ws, http.MethodPost, "/api/engine/event?e=down")
	idx = body["index"].(map[string]interface{})
	if idx["i"] != float64(9) {
		t.Errorf("i after down = %v, want 9", idx["i"])
	}
}

func TestEventUnknown(t *testing.T) {
	ws := newTestServer(t)
	code, _ := doJSON(t, ws, http.MethodPost, "/api/engine/event?e=sideways")
	testutil.AssertStatusCode(t, code, http.StatusBadRequest)

	code, _ = doJSON(t, ws, http.MethodGet, "/api/engine/event?e=up")
	testutil.AssertStatusCode(t, code, http.StatusMethodNotAllowed)
}

func TestEventEnterRunsCycle(t *testing.T) {
	ws := newTestServer(t)

	doJSON(t, ws, http.MethodPost, "/api/engine/event?e=up")
	code, body := doJSON(t, ws, http.MethodPost, "/api/engine/event?e=enter")
	testutil.AssertStatusCode(t, code, http.StatusOK)

	if _, ok := body["packet"]; !ok {
		t.Fatal("enter response missing packet")
	}
	verdict, ok := body["verdict"].(map[string]interface{})
	if !ok {
		t.Fatal("enter response missing verdict")
	}
	if verdict["active_primary"] != float64(249) {
		t.Errorf("active_primary = %v, want 249", verdict["active_primary"])
	}

	// The cycle is persisted under the configured run ID.
	records, err := ws.db.GetCycles("test-run")
	testutil.AssertNoError(t, err)
	if len(records) != 1 {
		t.Fatalf("persisted %d cycles, want 1", len(records))
	}
	if records[0].Index.I != 1 {
		t.Errorf("persisted index i = %d, want 1", records[0].Index.I)
	}
}

func TestRefresh(t *testing.T) {
	ws := newTestServer(t)

	code, body := doJSON(t, ws, http.MethodPost, "/api/engine/refresh")
	testutil.AssertStatusCode(t, code, http.StatusOK)
	counts, ok := body["active_counts"].([]interface{})
	if !ok || len(counts) != tomo.NumChannels {
		t.Fatalf("active_counts = %v", body["active_counts"])
	}
	for ch, c := range counts {
		if c != float64(249) {
			t.Errorf("active_counts[%d] = %v, want 249", ch, c)
		}
	}

	// A second refresh advances the cycle counter.
	_, body = doJSON(t, ws, http.MethodPost, "/api/engine/refresh")
	if body["cycle"] != float64(1) {
		t.Errorf("second refresh cycle = %v, want 1", body["cycle"])
	}

	stats, err := ws.db.GetChannelStats("test-run")
	testutil.AssertNoError(t, err)
	if len(stats) != 2*tomo.NumChannels {
		t.Errorf("persisted %d channel stat rows, want %d", len(stats), 2*tomo.NumChannels)
	}
}

func TestParams(t *testing.T) {
	ws := newTestServer(t) // nil config resolves to defaults
	code, body := doJSON(t, ws, http.MethodGet, "/api/engine/params")
	testutil.AssertStatusCode(t, code, http.StatusOK)

	if body["grid_size"] != float64(10) {
		t.Errorf("grid_size = %v, want 10", body["grid_size"])
	}
	if body["sparse_factor"] != float64(4) {
		t.Errorf("sparse_factor = %v, want 4", body["sparse_factor"])
	}
	if body["risk_threshold"] != float64(0.1) {
		t.Errorf("risk_threshold = %v, want 0.1", body["risk_threshold"])
	}
	coeffs, ok := body["poly_coeffs"].([]interface{})
	if !ok || len(coeffs) != 4 || coeffs[0] != float64(4) {
		t.Errorf("poly_coeffs = %v", body["poly_coeffs"])
	}
}

func TestWaveChart(t *testing.T) {
	ws := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/debug/wave?harmonics=5&points=50", nil)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("wave chart response does not embed echarts")
	}
}

func TestGridChart(t *testing.T) {
	ws := newTestServer(t)

	for _, channel := range []string{"", "primary", "verification", "transit", "derived"} {
		req := httptest.NewRequest(http.MethodGet, "/debug/grid?channel="+channel, nil)
		rec := httptest.NewRecorder()
		ws.Handler().ServeHTTP(rec, req)
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/grid?channel=chroma", nil)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}
