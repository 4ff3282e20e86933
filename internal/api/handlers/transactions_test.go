package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/testutil"
)

func TestTransactionHandler_Reverse(t *testing.T) {
	t.Run("reverses a transaction and returns the adjustment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db))

		investor := testutil.CreateInvestor(t, db, "Alice", 1000, 1000)
		txn := testutil.NewTransaction(investor.ID).
			WithType(model.TransactionContribution).
			WithAmounts(1000, 1.0, 1000).
			Build(t, db)

		body := `{"reason":"booked against the wrong investor"}`
		req := withUUIDParam(httptest.NewRequest(http.MethodPost, "/api/transactions/x/reverse", strings.NewReader(body)), txn.ID)
		w := httptest.NewRecorder()

		handler.Reverse(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var adjustment model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&adjustment)

		if adjustment.Type != model.TransactionAdjustment {
			t.Errorf("Expected adjustment type, got %s", adjustment.Type)
		}
		if adjustment.Amount != -1000 {
			t.Errorf("Expected compensating amount -1000, got %v", adjustment.Amount)
		}
	})

	t.Run("returns 400 when the reason is missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db))

		req := withUUIDParam(httptest.NewRequest(http.MethodPost, "/api/transactions/x/reverse", strings.NewReader(`{}`)), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.Reverse(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 when reversed twice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db))

		investor := testutil.CreateInvestor(t, db, "Alice", 1000, 1000)
		txn := testutil.NewTransaction(investor.ID).
			WithType(model.TransactionContribution).
			WithAmounts(1000, 1.0, 1000).
			Build(t, db)

		first := withUUIDParam(httptest.NewRequest(http.MethodPost, "/api/transactions/x/reverse", strings.NewReader(`{"reason":"mistake"}`)), txn.ID)
		handler.Reverse(httptest.NewRecorder(), first)

		second := withUUIDParam(httptest.NewRequest(http.MethodPost, "/api/transactions/x/reverse", strings.NewReader(`{"reason":"mistake"}`)), txn.ID)
		w := httptest.NewRecorder()
		handler.Reverse(w, second)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_Transaction(t *testing.T) {
	t.Run("returns 404 for an unknown transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTransactionHandler(testutil.NewTestTransactionService(t, db))

		req := withUUIDParam(httptest.NewRequest(http.MethodGet, "/api/transactions/x", nil), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.Transaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
