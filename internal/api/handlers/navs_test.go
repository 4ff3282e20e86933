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

func TestNavHandler_Compute(t *testing.T) {
	t.Run("computes an inception snapshot and returns 201", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		testutil.CreateInvestor(t, db, "Alice", 17000, 17000)

		body := `{"date":"2025-03-03","totalPortfolioValue":17000}`
		req := httptest.NewRequest(http.MethodPost, "/api/nav", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Compute(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var snapshot model.DailyNavSnapshot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&snapshot)

		if snapshot.NavPerShare != 1.0 {
			t.Errorf("Expected inception NAV 1.0, got %v", snapshot.NavPerShare)
		}
	})

	t.Run("returns 409 when the date already has a snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		testutil.CreateInvestor(t, db, "Alice", 17000, 17000)
		testutil.CreateSnapshot(t, db, "2025-03-03", 17000, 17000, 1.0)

		body := `{"date":"2025-03-03","totalPortfolioValue":17500}`
		req := httptest.NewRequest(http.MethodPost, "/api/nav", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Compute(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a weekend date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		// 2025-03-01 is a Saturday
		body := `{"date":"2025-03-01","totalPortfolioValue":17000}`
		req := httptest.NewRequest(http.MethodPost, "/api/nav", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Compute(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a negative portfolio value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		body := `{"date":"2025-03-03","totalPortfolioValue":-5}`
		req := httptest.NewRequest(http.MethodPost, "/api/nav", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Compute(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestNavHandler_History(t *testing.T) {
	t.Run("returns snapshots within the range in date order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		testutil.CreateSnapshot(t, db, "2025-03-03", 17000, 17000, 1.0)
		testutil.CreateSnapshot(t, db, "2025-03-04", 17850, 17000, 1.05)
		testutil.CreateSnapshot(t, db, "2025-03-05", 17000, 17000, 1.0)

		req := httptest.NewRequest(http.MethodGet, "/api/nav?start=2025-03-03&end=2025-03-04", nil)
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var snapshots []model.DailyNavSnapshot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&snapshots)

		if len(snapshots) != 2 {
			t.Fatalf("Expected 2 snapshots, got %d", len(snapshots))
		}
		if snapshots[0].Date.Format("2006-01-02") != "2025-03-03" || snapshots[1].Date.Format("2006-01-02") != "2025-03-04" {
			t.Errorf("Expected date-ordered range, got %s, %s", snapshots[0].Date.Format("2006-01-02"), snapshots[1].Date.Format("2006-01-02"))
		}
	})

	t.Run("returns 400 for a malformed start date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/nav?start=03-03-2025", nil)
		w := httptest.NewRecorder()

		handler.History(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestNavHandler_Latest(t *testing.T) {
	t.Run("returns the most recent snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		testutil.CreateSnapshot(t, db, "2025-03-03", 17000, 17000, 1.0)
		testutil.CreateSnapshot(t, db, "2025-03-04", 17850, 17000, 1.05)

		req := httptest.NewRequest(http.MethodGet, "/api/nav/latest", nil)
		w := httptest.NewRecorder()

		handler.Latest(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var snapshot model.DailyNavSnapshot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&snapshot)

		if snapshot.Date.Format("2006-01-02") != "2025-03-04" {
			t.Errorf("Expected latest date 2025-03-04, got %s", snapshot.Date.Format("2006-01-02"))
		}
	})

	t.Run("returns 404 before the first snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewNavHandler(testutil.NewTestNavService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/nav/latest", nil)
		w := httptest.NewRecorder()

		handler.Latest(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
