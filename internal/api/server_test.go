package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/deductible/internal/cache"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	toggles model.DeductionToggleState
	manual  model.ManualOverrides
	saved   map[string][]model.ProcessedTransaction
	mu      sync.Mutex
}

func (m *memoryStore) GetDeductionToggles(context.Context, string) (model.DeductionToggleState, error) {
	return m.toggles, nil
}

func (m *memoryStore) GetManualOverrides(context.Context, string) (model.ManualOverrides, error) {
	return m.manual, nil
}

func (m *memoryStore) GetCategoryOverrides(context.Context, string) (model.CategoryOverrides, error) {
	return model.CategoryOverrides{}, nil
}

func (m *memoryStore) SaveClassifications(_ context.Context, _, batchID string, results []model.ProcessedTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]model.ProcessedTransaction)
	}
	m.saved[batchID] = results
	return nil
}

func (m *memoryStore) GetClassificationHistory(context.Context, string, int) ([]model.HistoryRecord, error) {
	return nil, nil
}

func newTestServer(opts ...Option) *Server {
	e := engine.New(cache.New(cache.DefaultTTL, cache.DefaultCapacity), engine.DefaultConfig())
	return NewServer(e, opts...)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleBulk_Descriptions(t *testing.T) {
	s := newTestServer()

	body := `{"descriptions": ["Uber Trip", "ATM Withdrawal", "Uber Trip"], "toggles": {"Vehicles, Travel & Transport": true}}`
	rec := do(t, s, http.MethodPost, "/api/classify/bulk", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp BulkResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEmpty(t, resp.BatchID)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 3, resp.Stats.TotalProcessed)
	assert.Equal(t, 1, resp.Stats.CacheHits)

	uber := resp.Results["Uber Trip"]
	assert.Equal(t, "Uber", uber.MerchantName)
	assert.Equal(t, "4622", uber.IndustryCode)
	assert.Equal(t, model.StrategyPattern, uber.Classification.MatchStrategy)
	assert.True(t, uber.IsBusinessExpense)
	assert.Nil(t, uber.Amount, "plain descriptions carry no amount")
	assert.True(t, uber.DeductionAmount.IsZero())

	atm := resp.Results["ATM Withdrawal"]
	assert.False(t, atm.IsBusinessExpense)
	assert.Equal(t, model.StrategyBlacklist, atm.Classification.MatchStrategy)
}

func TestHandleBulk_Transactions(t *testing.T) {
	store := &memoryStore{
		toggles: model.DeductionToggleState{reference.CategoryVehicles: true},
		manual:  model.ManualOverrides{"t2": true},
	}
	s := newTestServer(WithOverrideReader(store, "alice"), WithHistory(store))

	body := `{"transactions": [
		{"id": "t1", "description": "Debit Card Purchase Shell Coles Express", "amount": "-45.50", "date": "2024-03-01"},
		{"id": "t2", "description": "Zorblax Widgets", "amount": -12.25},
		{"id": "t3", "description": "Deposit Shopify Shopify-L7N7dwct6J", "amount": 250}
	]}`
	rec := do(t, s, http.MethodPost, "/api/classify/bulk", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BulkResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	fuel := resp.Results["Debit Card Purchase Shell Coles Express"]
	assert.True(t, fuel.IsBusinessExpense)
	assert.Equal(t, "45.5", fuel.DeductionAmount.String())
	require.NotNil(t, fuel.Amount)
	assert.Equal(t, "-45.5", fuel.Amount.String())

	widget := resp.Results["Zorblax Widgets"]
	assert.True(t, widget.IsBusinessExpense, "stored manual override applies")
	assert.Equal(t, model.SourceManual, widget.ClassificationSource)

	sale := resp.Results["Deposit Shopify Shopify-L7N7dwct6J"]
	assert.False(t, sale.IsBusinessExpense)
	assert.Equal(t, model.IncomeMerchant, sale.MerchantName)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.saved[resp.BatchID], 3)
}

func TestHandleBulk_ClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "empty object", body: `{}`, status: http.StatusBadRequest},
		{name: "empty list", body: `{"descriptions": []}`, status: http.StatusBadRequest},
		{name: "not a list", body: `{"descriptions": "Uber Trip"}`, status: http.StatusBadRequest},
		{name: "top-level array", body: `["Uber Trip"]`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"descriptions": [`, status: http.StatusBadRequest},
		{name: "both shapes", body: `{"descriptions": ["a"], "transactions": [{"description": "b"}]}`, status: http.StatusBadRequest},
		{name: "bad date", body: `{"transactions": [{"description": "b", "date": "01/02/2024"}]}`, status: http.StatusBadRequest},
		{name: "bad amount", body: `{"transactions": [{"description": "b", "amount": "lots"}]}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rec := do(t, s, http.MethodPost, "/api/classify/bulk", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleBulk_TooLarge(t *testing.T) {
	s := newTestServer()
	var buf bytes.Buffer
	buf.WriteString(`{"descriptions": ["`)
	buf.WriteString(strings.Repeat("x", maxBodyBytes))
	buf.WriteString(`"]}`)

	rec := do(t, s, http.MethodPost, "/api/classify/bulk", buf.String())
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleSingle(t *testing.T) {
	s := newTestServer()

	body := `{"description": "Direct Debit Optus Mobile Services", "amount": "-59.00", "toggles": {"Home Office Expenses": true}}`
	rec := do(t, s, http.MethodPost, "/api/classify", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ResultJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Optus", resp.MerchantName)
	assert.Equal(t, reference.CategoryHomeOffice, resp.DeductionType)
	assert.Equal(t, 95, resp.Classification.Confidence)
	assert.True(t, resp.IsBusinessExpense)
}

func TestHandleCacheStats(t *testing.T) {
	s := newTestServer()
	router := s.Router()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(`{"description": "Coles"}`))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats cache.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 3, stats.EntryHits)
	assert.Equal(t, int64(2), stats.Hits)
}

func TestHandleTableStats(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodGet, "/api/tables/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats reference.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, reference.TableStats(), stats)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["aiEnabled"])
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodGet, "/api/classify/bulk", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
