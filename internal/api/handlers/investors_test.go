package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/testutil"
)

// withUUIDParam attaches a chi route context carrying the uuid URL parameter.
func withUUIDParam(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uuid", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newInvestorHandler(t *testing.T) *InvestorHandler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewInvestorHandler(
		testutil.NewTestInvestorService(t, db),
		testutil.NewTestTransactionService(t, db),
	)
}

func TestInvestorHandler_CreateInvestor(t *testing.T) {
	t.Run("creates an investor and returns 201", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewInvestorHandler(
			testutil.NewTestInvestorService(t, db),
			testutil.NewTestTransactionService(t, db),
		)

		body := `{"name":"Alice","joinDate":"2025-01-02"}`
		req := httptest.NewRequest(http.MethodPost, "/api/investors", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateInvestor(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var investor model.Investor
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&investor)

		if investor.Name != "Alice" {
			t.Errorf("Expected name Alice, got %q", investor.Name)
		}
		if investor.Status != model.InvestorActive {
			t.Errorf("Expected active status, got %s", investor.Status)
		}
	})

	t.Run("returns 400 for a missing name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewInvestorHandler(
			testutil.NewTestInvestorService(t, db),
			testutil.NewTestTransactionService(t, db),
		)

		body := `{"joinDate":"2025-01-02"}`
		req := httptest.NewRequest(http.MethodPost, "/api/investors", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateInvestor(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a malformed date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewInvestorHandler(
			testutil.NewTestInvestorService(t, db),
			testutil.NewTestTransactionService(t, db),
		)

		body := `{"name":"Alice","joinDate":"02-01-2025"}`
		req := httptest.NewRequest(http.MethodPost, "/api/investors", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateInvestor(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for an invalid body", func(t *testing.T) {
		handler := newInvestorHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/investors", strings.NewReader("{"))
		w := httptest.NewRecorder()

		handler.CreateInvestor(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestInvestorHandler_Investor(t *testing.T) {
	t.Run("returns 404 for an unknown investor", func(t *testing.T) {
		handler := newInvestorHandler(t)

		req := withUUIDParam(httptest.NewRequest(http.MethodGet, "/api/investors/x", nil), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.Investor(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestInvestorHandler_Position(t *testing.T) {
	t.Run("returns the position priced at the latest NAV", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewInvestorHandler(
			testutil.NewTestInvestorService(t, db),
			testutil.NewTestTransactionService(t, db),
		)

		investor := testutil.CreateInvestor(t, db, "Alice", 10000, 10000)
		testutil.CreateSnapshot(t, db, "2025-06-30", 12500, 10000, 1.25)

		req := withUUIDParam(httptest.NewRequest(http.MethodGet, "/api/investors/x/position", nil), investor.ID)
		w := httptest.NewRecorder()

		handler.Position(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var position model.InvestorPosition
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&position)

		if position.CurrentValue != 12500 {
			t.Errorf("Expected current value 12500, got %v", position.CurrentValue)
		}
		if position.PercentageOfFund != 100 {
			t.Errorf("Expected 100%% of fund, got %v", position.PercentageOfFund)
		}
	})

	t.Run("returns 409 before the first snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewInvestorHandler(
			testutil.NewTestInvestorService(t, db),
			testutil.NewTestTransactionService(t, db),
		)

		investor := testutil.CreateInvestor(t, db, "Alice", 10000, 10000)

		req := withUUIDParam(httptest.NewRequest(http.MethodGet, "/api/investors/x/position", nil), investor.ID)
		w := httptest.NewRecorder()

		handler.Position(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}
