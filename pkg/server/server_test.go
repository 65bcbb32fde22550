package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/catalog"
	"github.com/rg0now/device-assessment/pkg/config"
	"github.com/rg0now/device-assessment/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		RateLimit:   config.RateLimitConfig{RPS: 1000, Burst: 1000},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"*"}, MaxAgeHours: 1},
		Export:      config.ExportConfig{Format: "table"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, store *catalog.Store) http.Handler {
	t.Helper()
	if store == nil {
		store = catalog.NewStaticStore(catalog.New(map[string]map[string]int{
			"Dell": {"Latitude 5490": 2019},
			"HP":   {"EliteBook 840 G5": 2018, "ProBook 450 G7": 2020},
		}))
	}
	a := analyzer.NewAnalyzer(store, nil)
	a.SetCurrentYear(2025)

	srv, err := New(cfg, store, a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv.Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) (Response, T) {
	t.Helper()
	var raw struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	var data T
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return raw.Response, data
}

func TestAssessMatchesEngine(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)

	w := do(h, http.MethodPost, "/api/v1/assessments", `{
		"asset_tag": "TAG-9",
		"brand": "HP",
		"model": "EliteBook 840 G5",
		"fault_status": "Passes hardware testing",
		"specifications": "Exceeds SOE",
		"physical_condition": "Reasonable"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Errorf("missing request id header")
	}

	resp, got := decode[AssessResponse](t, w)
	if !resp.Success {
		t.Fatalf("unsuccessful: %+v", resp)
	}

	as := got.Assessment
	if as.ManufacturingYear != 2018 || as.Source != models.SourceDatabaseLookup {
		t.Errorf("lookup not applied: year=%d source=%q", as.ManufacturingYear, as.Source)
	}

	want := analyzer.Evaluate(as.Input)
	if as.Breakdown != want.Breakdown || as.Decision != want.Decision {
		t.Errorf("breakdown = %+v, want %+v", as.Breakdown, want.Breakdown)
	}
	// 3 + 4 + 2 + 0 + 0 - 2
	if as.Breakdown.GrandTotal != 7 || as.Decision.Outcome != models.OutcomeDonate {
		t.Errorf("got %v / %s", as.Breakdown.GrandTotal, as.Decision.Outcome)
	}
	if got.Display.Total != "7/12 (-2 age penalty)" {
		t.Errorf("display total = %q", got.Display.Total)
	}
}

func TestAssessIncompleteIsWaiting(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)

	w := do(h, http.MethodPost, "/api/v1/assessments", `{"device_age": "3 years"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	_, got := decode[AssessResponse](t, w)
	if got.Assessment.Decision.Outcome != models.OutcomeWaiting || got.Assessment.Breakdown.GrandTotal != 12 {
		t.Errorf("got %+v", got.Assessment.Decision)
	}
	if a := got.Assessment.Input.DeviceAgeYears; a == nil || *a != 3 {
		t.Errorf("device_age text not parsed: %v", a)
	}
}

func TestAssessValidation(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"brand": `},
		{"unknown fault status", `{"fault_status": "Sort of works"}`},
		{"unknown warranty", `{"warranty_status": "Maybe"}`},
		{"negative age", `{"device_age_years": -1}`},
		{"implausible year", `{"manufacturing_year": 1200}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/v1/assessments", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp, _ := decode[json.RawMessage](t, w)
			if resp.Success || resp.Error == "" {
				t.Errorf("unexpected envelope %+v", resp)
			}
		})
	}
}

func TestExport(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)
	body := `{"serial_number": "SVC123", "brand": "Dell", "model": "Latitude 5490",
		"fault_status": "Passes hardware testing", "specifications": "Meets SOE",
		"physical_condition": "Reasonable"}`

	tests := []struct {
		query       string
		contentType string
		want        string
	}{
		{"", "text/plain", "LAPTOP/PC ASSET ASSESSMENT"},
		{"?format=simple", "text/plain", "DEVICE ASSESSMENT REPORT"},
		{"?format=detailed", "text/plain", "Device Assessment Report"},
		{"?format=html", "text/html", "<table"},
	}

	for _, tt := range tests {
		w := do(h, http.MethodPost, "/api/v1/assessments/export"+tt.query, body)
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d: %s", tt.query, w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
			t.Errorf("%q: content type = %q", tt.query, ct)
		}
		out := w.Body.String()
		if !strings.Contains(out, tt.want) || !strings.Contains(out, "servicetag/SVC123") {
			t.Errorf("%q: unexpected output:\n%s", tt.query, out)
		}
	}

	if w := do(h, http.MethodPost, "/api/v1/assessments/export?format=pdf", body); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d", w.Code)
	}
}

func TestCatalogLookup(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)

	w := do(h, http.MethodGet, "/api/v1/catalog/lookup?brand=Dell&model=Latitude+5490", "")
	_, hit := decode[LookupResponse](t, w)
	if !hit.Found || hit.ManufacturingYear != 2019 || hit.WarrantyStatus != models.WarrantyOut {
		t.Errorf("hit = %+v", hit)
	}
	if hit.DeviceAgeYears == nil || *hit.DeviceAgeYears != 6 {
		t.Errorf("age = %v", hit.DeviceAgeYears)
	}

	w = do(h, http.MethodGet, "/api/v1/catalog/lookup?brand=dell&model=Latitude+5490", "")
	if w.Code != http.StatusOK {
		t.Fatalf("miss status = %d", w.Code)
	}
	_, miss := decode[LookupResponse](t, w)
	if miss.Found || miss.ManufacturingYear != 0 || miss.Source != "" {
		t.Errorf("miss = %+v", miss)
	}
}

func TestCatalogBrowse(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)

	_, brands := decode[[]string](t, do(h, http.MethodGet, "/api/v1/catalog/brands?q=h", ""))
	if len(brands) != 1 || brands[0] != "HP" {
		t.Errorf("brands = %v", brands)
	}

	_, names := decode[[]string](t, do(h, http.MethodGet, "/api/v1/catalog/brands/HP/models?q=pro", ""))
	if len(names) != 1 || names[0] != "ProBook 450 G7" {
		t.Errorf("models = %v", names)
	}

	_, none := decode[[]string](t, do(h, http.MethodGet, "/api/v1/catalog/brands/Acer/models", ""))
	if none == nil || len(none) != 0 {
		t.Errorf("unknown brand models = %v", none)
	}

	_, info := decode[CatalogInfo](t, do(h, http.MethodGet, "/api/v1/catalog", ""))
	if info.Brands != 2 || info.Models != 3 {
		t.Errorf("info = %+v", info)
	}
}

func TestCatalogReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	if err := os.WriteFile(path, []byte(`{"version": "1", "brands": {"Lenovo": {"ThinkPad T480": 2018}}}`), 0644); err != nil {
		t.Fatal(err)
	}
	store := catalog.NewStore(path, nil)
	h := newTestServer(t, testConfig(), store)

	w := do(h, http.MethodPost, "/api/v1/catalog/reload", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if _, ok := store.Current().Lookup("Lenovo", "ThinkPad T480"); !ok {
		t.Errorf("reload did not install catalog")
	}

	if err := os.WriteFile(path, []byte(`not json`), 0644); err != nil {
		t.Fatal(err)
	}
	w = do(h, http.MethodPost, "/api/v1/catalog/reload", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad reload status = %d", w.Code)
	}
	if _, ok := store.Current().Lookup("Lenovo", "ThinkPad T480"); !ok {
		t.Errorf("failed reload dropped the catalog")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2}
	h := newTestServer(t, cfg, nil)

	for i := 0; i < 2; i++ {
		if w := do(h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	if w := do(h, http.MethodGet, "/health", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1000, 1)
	rl.getLimiter("10.0.0.1").Allow()
	time.Sleep(5 * time.Millisecond)
	rl.Prune()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) != 0 {
		t.Errorf("idle limiter not pruned")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	h := newTestServer(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestNewRejectsUnknownExportFormat(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Format = "pdf"
	if _, err := New(cfg, catalog.NewStaticStore(nil), analyzer.NewAnalyzer(nil, nil)); err == nil {
		t.Errorf("expected error")
	}
}
