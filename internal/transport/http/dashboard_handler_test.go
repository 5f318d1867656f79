package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ecomdash/internal/analysis"
	"ecomdash/internal/dataset"
	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/services"
	"ecomdash/internal/shared/testutil"
)

var loadedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func catalogEntries() []services.CatalogEntry {
	var out []services.CatalogEntry
	for _, k := range analysis.Catalog() {
		out = append(out, services.CatalogEntry{Name: k.String(), Title: k.Title()})
	}
	return out
}

func okSection(kind analysis.Kind, result any) analysis.Section {
	return analysis.Section{Kind: kind, Title: kind.Title(), Result: result}
}

func failedSection(kind analysis.Kind) analysis.Section {
	err := &analysis.ComputationError{Kind: kind, Table: dataset.Products, Column: "product_category_name", Err: errors.New("column missing")}
	return analysis.Section{Kind: kind, Title: kind.Title(), Error: err.Error(), Err: err}
}

func sampleDashboard(sel analysis.Selection) *services.Dashboard {
	return &services.Dashboard{
		Selected: sel.Names(),
		Sections: []analysis.Section{
			okSection(analysis.PaymentMethods, []analysis.LabelCount{{Label: "credit_card", Count: 3}, {Label: "boleto", Count: 1}}),
			failedSection(analysis.TopCategories),
		},
		Conclusion:  analysis.Conclusion(),
		LoadedAt:    loadedAt,
		GeneratedAt: loadedAt.Add(time.Minute),
	}
}

func newDashboardRouter(t *testing.T, svc DashboardServiceInterface) http.Handler {
	logger, _ := testutil.NewTestLogger(t)
	h := NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDashboardHandler_Catalog(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Catalog").Return(catalogEntries())

	rec := serve(newDashboardRouter(t, svc), "/api/catalog")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Analyses []services.CatalogEntry `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Analyses, 10)
	assert.Equal(t, "price-distribution", body.Analyses[0].Name)
}

func TestDashboardHandler_Dashboard(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  analysis.Selection
	}{
		{"default selects everything", "", analysis.All()},
		{"repeated params", "?section=payment-methods&section=top-categories", analysis.NewSelection(analysis.PaymentMethods, analysis.TopCategories)},
		{"comma list", "?section=payment-methods,%20top-categories", analysis.NewSelection(analysis.PaymentMethods, analysis.TopCategories)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Dashboard", mock.Anything, tt.want).Return(sampleDashboard(tt.want), nil)

			rec := serve(newDashboardRouter(t, svc), "/api/dashboard"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			svc.AssertExpectations(t)

			var body struct {
				Sections []struct {
					Kind   string          `json:"kind"`
					Result json.RawMessage `json:"result"`
					Error  string          `json:"error"`
				} `json:"sections"`
				Conclusion []string `json:"conclusion"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Sections, 2)
			assert.Equal(t, "payment-methods", body.Sections[0].Kind)
			assert.Empty(t, body.Sections[0].Error)
			assert.Equal(t, "top-categories", body.Sections[1].Kind)
			assert.Contains(t, body.Sections[1].Error, "product_category_name")
			assert.Len(t, body.Conclusion, 6)
		})
	}
}

func TestDashboardHandler_Dashboard_UnknownSection(t *testing.T) {
	svc := new(MockDashboardService)

	rec := serve(newDashboardRouter(t, svc), "/api/dashboard?section=payment-methods&section=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeProblem(t, rec)
	assert.Equal(t, apierrors.TypeValidation, body["type"])
	assert.NotEmpty(t, body["errors"])
	svc.AssertNotCalled(t, "Dashboard", mock.Anything, mock.Anything)
}

func TestDashboardHandler_Dashboard_RetrievalFailure(t *testing.T) {
	svc := new(MockDashboardService)
	retrieval := &dataset.RetrievalError{Table: dataset.Orders, Source: "https://example.invalid/orders.csv", Err: errors.New("connection refused")}
	svc.On("Dashboard", mock.Anything, analysis.All()).Return(nil, retrieval)

	rec := serve(newDashboardRouter(t, svc), "/api/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "orders", decodeProblem(t, rec)["table"])
}

func TestDashboardHandler_Section(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Section", mock.Anything, analysis.WeekdayWeekend).
		Return(okSection(analysis.WeekdayWeekend, &analysis.WeekSplit{Weekday: 4, Weekend: 2}), nil)

	rec := serve(newDashboardRouter(t, svc), "/api/dashboard/weekday-weekend")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"kind": "weekday-weekend",
		"title": "`+analysis.WeekdayWeekend.Title()+`",
		"result": {"weekday": 4, "weekend": 2, "unparsed": 0}
	}`, rec.Body.String())
}

func TestDashboardHandler_Section_Errors(t *testing.T) {
	t.Run("unknown kind is 404", func(t *testing.T) {
		svc := new(MockDashboardService)
		rec := serve(newDashboardRouter(t, svc), "/api/dashboard/nope")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeProblem(t, rec)
		assert.Equal(t, apierrors.TypeUnknownAnalysis, body["type"])
		assert.Equal(t, "UNKNOWN_ANALYSIS", body["error_code"])
		assert.Equal(t, `analysis "nope" not found`, body["detail"])
		assert.Len(t, body["available"], 10)
	})

	t.Run("failed analysis is 422", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Section", mock.Anything, analysis.TopCategories).Return(failedSection(analysis.TopCategories), nil)

		rec := serve(newDashboardRouter(t, svc), "/api/dashboard/top-categories")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeProblem(t, rec)
		assert.Equal(t, "top-categories", body["analysis"])
		assert.Equal(t, "product_category_name", body["column"])
	})
}

func TestDashboardHandler_Datasets(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Datasets", mock.Anything).Return([]dataset.TableSummary{
		{Name: dataset.Customers, Source: "customers.csv", Rows: 3, Columns: []string{"customer_id", "customer_state"}},
	}, nil)

	rec := serve(newDashboardRouter(t, svc), "/api/datasets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customer_state"`)
}

func TestDashboardHandler_ExportWorkbook(t *testing.T) {
	sel := analysis.NewSelection(analysis.PaymentMethods, analysis.TopCategories)
	svc := new(MockDashboardService)
	svc.On("Dashboard", mock.Anything, sel).Return(sampleDashboard(sel), nil)

	rec := serve(newDashboardRouter(t, svc), "/api/export.xlsx?section=payment-methods&section=top-categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dashboard_20240301_120100.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"payment-methods", "top-categories", "conclusion"}, f.GetSheetList())
}

func TestDashboardHandler_ExportCSV(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Section", mock.Anything, analysis.PaymentMethods).
		Return(okSection(analysis.PaymentMethods, []analysis.LabelCount{{Label: "voucher", Count: 2}}), nil)

	rec := serve(newDashboardRouter(t, svc), "/api/export/payment-methods.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Equal(t, "\ufeffpayment_type,count\nvoucher,2\n", rec.Body.String())
}
