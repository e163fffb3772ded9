package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/reports"
	"github.com/JimmysRanch/126-sub001/internal/service"
	"github.com/JimmysRanch/126-sub001/internal/store/memory"
)

var testNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

// newTestAPI builds a full API with a seeded in-memory store, real
// AuthManager and real Service so handler tests exercise the whole path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded("test-salon", testNow)
	svc := service.New(repo, nil, reports.NewEngine(reports.DefaultCostParams()), service.Options{
		DefaultBusinessID: "test-salon",
		Now:               func() time.Time { return testNow },
	})
	auth := NewAuthManager("test-secret-key-with-enough-bytes", time.Hour, repo)

	return New(svc, auth, "*")
}

func login(t *testing.T, api *API, username string, password string) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("%s login failed, status %d", username, res.Code)
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}

func loginAsOwner(t *testing.T, api *API) string {
	return login(t, api, "owner", "owner123")
}

func loginAsManager(t *testing.T, api *API) string {
	return login(t, api, "manager", "manager123")
}

func authedGet(t *testing.T, api *API, token string, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	return res
}

func authedPost(t *testing.T, api *API, token string, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", fetchCSRFToken(t, api))
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	return res
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	payload, _ := json.Marshal(map[string]string{"username": "owner", "password": "wrongpassword"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestReportsRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/owner-overview", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestListReports(t *testing.T) {
	api := newTestAPI(t)
	res := authedGet(t, api, loginAsManager(t, api), "/api/v1/reports")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var body struct {
		Reports []domain.ReportSummary `json:"reports"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Reports) != 12 {
		t.Fatalf("expected 12 reports, got %d", len(body.Reports))
	}
}

func TestGetReportDecodesFilterQuery(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsManager(t, api)

	res := authedGet(t, api, token, "/api/v1/reports/sales-summary?preset=custom&start=2024-03-01&end=2024-03-10&compare=true")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var report domain.ReportData
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.ReportID != domain.ReportSalesSummary || report.StartDate != "2024-03-01" || report.EndDate != "2024-03-10" {
		t.Fatalf("unexpected report header %s %s..%s", report.ReportID, report.StartDate, report.EndDate)
	}
	if report.CompareStartDate != "2024-02-20" || report.CompareEndDate != "2024-02-29" {
		t.Fatalf("unexpected comparison window %s..%s", report.CompareStartDate, report.CompareEndDate)
	}
	if len(report.KPIs) == 0 || len(report.Charts) == 0 {
		t.Fatalf("expected KPIs and charts in report")
	}
}

func TestGetUnknownReportReturns404(t *testing.T) {
	api := newTestAPI(t)
	res := authedGet(t, api, loginAsOwner(t, api), "/api/v1/reports/payroll")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetReportDefaults(t *testing.T) {
	api := newTestAPI(t)
	res := authedGet(t, api, loginAsOwner(t, api), "/api/v1/reports/retention-rebooking/filters")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var defaults domain.FilterDefaults
	if err := json.NewDecoder(res.Body).Decode(&defaults); err != nil {
		t.Fatalf("decode defaults: %v", err)
	}
	if defaults.State.DatePreset != domain.PresetLast90 || !strings.Contains(defaults.Query, "preset=last90") {
		t.Fatalf("unexpected defaults %+v", defaults)
	}
}

func TestDrillEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsManager(t, api)

	res := authedPost(t, api, token, "/api/v1/drill", domain.DrillRequest{
		Title:    "Completed visits",
		RowTypes: []string{domain.RowAppointments},
		Filter:   map[string]string{"status": domain.StatusCompleted, "startDate": "2024-03-01", "endDate": "2024-03-10"},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var result domain.DrillResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode drill: %v", err)
	}
	if len(result.Sets) != 1 || result.Sets[0].RowType != domain.RowAppointments {
		t.Fatalf("unexpected drill sets %+v", result.Sets)
	}
	for _, row := range result.Sets[0].Rows {
		if row["status"] != domain.StatusCompleted {
			t.Fatalf("drill returned non-completed row %+v", row)
		}
	}

	empty := authedPost(t, api, token, "/api/v1/drill", domain.DrillRequest{Title: "nothing"})
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for drill without row types, got %d", empty.Code)
	}
}

func TestMetricReferenceFormats(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsManager(t, api)

	md := authedGet(t, api, token, "/api/v1/metrics/reference")
	if md.Code != http.StatusOK || !strings.HasPrefix(md.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("expected markdown reference, got %d %s", md.Code, md.Header().Get("Content-Type"))
	}
	if !strings.Contains(md.Body.String(), "## Net Sales") {
		t.Fatalf("markdown reference missing net sales section")
	}

	html := authedGet(t, api, token, "/api/v1/metrics/reference?format=html")
	if html.Code != http.StatusOK || !strings.Contains(html.Body.String(), "<h2>") {
		t.Fatalf("expected html reference, got %d", html.Code)
	}

	bad := authedGet(t, api, token, "/api/v1/metrics/reference?format=pdf")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", bad.Code)
	}

	list := authedGet(t, api, token, "/api/v1/metrics")
	var body struct {
		Metrics []domain.MetricDefinition `json:"metrics"`
	}
	if err := json.NewDecoder(list.Body).Decode(&body); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if len(body.Metrics) == 0 {
		t.Fatalf("expected metric definitions")
	}
}

func TestDatasetImportIsOwnerOnly(t *testing.T) {
	api := newTestAPI(t)
	raw := domain.RawDataset{
		Appointments: []domain.RawAppointment{{ID: "apt-1", Date: "2024-03-05", Status: "completed", TotalPrice: "50"}},
	}

	managerRes := authedPost(t, api, loginAsManager(t, api), "/api/v1/datasets/import", raw)
	if managerRes.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager import, got %d", managerRes.Code)
	}

	owner := loginAsOwner(t, api)
	ownerRes := authedPost(t, api, owner, "/api/v1/datasets/import", raw)
	if ownerRes.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", ownerRes.Code, ownerRes.Body.String())
	}
	var resp domain.ImportResponse
	if err := json.NewDecoder(ownerRes.Body).Decode(&resp); err != nil {
		t.Fatalf("decode import: %v", err)
	}
	if resp.Counts.Appointments != 1 || resp.Version == "" {
		t.Fatalf("unexpected import response %+v", resp)
	}

	emptyRes := authedPost(t, api, owner, "/api/v1/datasets/import", domain.RawDataset{})
	if emptyRes.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty import, got %d", emptyRes.Code)
	}

	history := authedGet(t, api, owner, "/api/v1/datasets/imports?limit=5")
	var body struct {
		Imports []domain.DatasetImport `json:"imports"`
	}
	if err := json.NewDecoder(history.Body).Decode(&body); err != nil {
		t.Fatalf("decode imports: %v", err)
	}
	if len(body.Imports) != 1 || body.Imports[0].ImportedBy != "owner" {
		t.Fatalf("unexpected import history %+v", body.Imports)
	}
}

func TestOwnerCreatesManager(t *testing.T) {
	api := newTestAPI(t)
	owner := loginAsOwner(t, api)

	res := authedPost(t, api, owner, "/api/v1/users/managers", domain.ManagerCreateRequest{Username: "frontdesk", Password: "desk-pass-1"})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}
	login(t, api, "frontdesk", "desk-pass-1")

	forbidden := authedGet(t, api, loginAsManager(t, api), "/api/v1/users/managers")
	if forbidden.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager listing users, got %d", forbidden.Code)
	}
}
