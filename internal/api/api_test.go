package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/salesperf/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salesperf/backend-go/internal/catalog"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/kpi"
	"github.com/andresuchdata/salesperf/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const invoicesCSV = `Invoice No,Invoice Date,Customer Code,Customer Name,Sales Executive Name,Brand Name,Product Name,Volume,Value
INV-1,2025-03-03,C1,Alpha Motors,Alice,GTX,GTX 20W-40 1L,10,2500
INV-2,2025-03-04,C2,Beta Auto,Alice,ACTIV,ACTIV 4T 1L,2,600
INV-3,2025-03-05,C3,Gamma Garage,Bob,MAGNATEC,MAGNATEC 5W-30 3.5L,7,2800
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := sqlstore.Connect(ctx, "sqlite3", ":memory:", 2)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat := catalog.New(db)
	if _, err := cat.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return NewRouter(&Services{
		Reports:    service.NewReportService(db, cat, kpi.NewEngine(2, 2), nil),
		Catalog:    cat,
		Imports:    service.NewImportService(db, db, db, nil, "", nil),
		Agreements: service.NewAgreementService(db, db),
		Search:     service.NewSearchService(db),
	}, nil)
}

func do(router *gin.Engine, req *http.Request, role, execs string) *httptest.ResponseRecorder {
	if role != "" {
		req.Header.Set(middleware.HeaderRole, role)
	}
	if execs != "" {
		req.Header.Set(middleware.HeaderSalesExecs, execs)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, schema, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte(content))
	mw.WriteField("current_year", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/"+schema, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, httptest.NewRequest(http.MethodGet, "/healthz", nil), "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCallerRoleIsRequired(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpis", nil), "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = do(router, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/seed", nil), middleware.RoleSales, "Alice")
	if w.Code != http.StatusForbidden {
		t.Fatalf("got %d, want %d", w.Code, http.StatusForbidden)
	}

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpis", nil), middleware.RoleManager, "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUploadAndScopedReport(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, uploadRequest(t, "invoices", "march.csv", invoicesCSV), middleware.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("upload: got %d: %s", w.Code, w.Body.String())
	}
	var result domain.ImportResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Inserted != 3 {
		t.Fatalf("got %d inserted, want 3", result.Inserted)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?from=2025-03-01&to=2025-04-01", nil)
	w = do(router, req, middleware.RoleSales, "Alice")
	if w.Code != http.StatusOK {
		t.Fatalf("report: got %d: %s", w.Code, w.Body.String())
	}
	var report domain.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TotalVolume != 12 {
		t.Fatalf("got total %v, want 12", report.TotalVolume)
	}
}

func TestUploadEmptyFileIsUnprocessable(t *testing.T) {
	router := newTestRouter(t)
	header := "Invoice No,Invoice Date,Sales Executive Name,Volume\n"

	w := do(router, uploadRequest(t, "invoices", "empty.csv", header), middleware.RoleAdmin, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want %d: %s", w.Code, http.StatusUnprocessableEntity, w.Body.String())
	}
}

func TestUploadUnknownSchema(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, uploadRequest(t, "payments", "p.csv", invoicesCSV), middleware.RoleAdmin, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReportRejectsBadWindow(t *testing.T) {
	router := newTestRouter(t)

	cases := []string{
		"/api/v1/reports?from=2025-04-01&to=2025-03-01",
		"/api/v1/reports?from=03/01/2025",
		"/api/v1/reports?days=0",
		"/api/v1/reports?month_offset=2",
	}
	for _, url := range cases {
		w := do(router, httptest.NewRequest(http.MethodGet, url, nil), middleware.RoleAdmin, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d, want %d", url, w.Code, http.StatusBadRequest)
		}
	}
}

func TestUnknownKPIIsNotFound(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, httptest.NewRequest(http.MethodGet, "/api/v1/kpis/nope/result", nil), middleware.RoleAdmin, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCatalogExportImportRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/export", nil), middleware.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/import", bytes.NewReader(w.Body.Bytes()))
	w = do(router, req, middleware.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("import: got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Imported    int `json:"imported"`
		Definitions int `json:"definitions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Imported != 0 || body.Definitions != 11 {
		t.Fatalf("got %+v, want 0 imported of 11 without overwrite", body)
	}
}

func TestAgreementLifecycle(t *testing.T) {
	router := newTestRouter(t)

	payload := `{"customer_code":"C1","customer_name":"Alpha Motors","start_date":"2025-03-01","end_date":"2025-03-31","target_volume":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agreements", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := do(router, req, middleware.RoleAdmin, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", w.Code, w.Body.String())
	}
	var created domain.Agreement
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/v1/agreements/"+created.ID, nil), middleware.RoleAdmin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: got %d", w.Code)
	}

	bad := `{"customer_code":"C1","start_date":"2025-03-31","end_date":"2025-03-01","target_volume":20}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/agreements", bytes.NewBufferString(bad))
	req.Header.Set("Content-Type", "application/json")
	w = do(router, req, middleware.RoleAdmin, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inverted dates: got %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = do(router, httptest.NewRequest(http.MethodDelete, "/api/v1/agreements/"+created.ID, nil), middleware.RoleAdmin, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", w.Code)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	if allowAll || len(origins) != 2 || origins[1] != "http://b.test" {
		t.Fatalf("got %v %v", origins, allowAll)
	}
	if _, allowAll := normalizeAllowedOrigins([]string{"*"}); !allowAll {
		t.Fatalf("* must allow every origin")
	}
}
