package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransactionFlow_CreateListStats(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "tx@test.com", "password123")

	salaryID := app.createCategory(t, token, "Consulting", "income")
	foodID := app.createCategory(t, token, "Dining", "expense")

	app.createTransaction(t, token, salaryID, "income", 1000)
	app.createTransaction(t, token, foodID, "expense", 200)
	app.createTransaction(t, token, foodID, "expense", 100)

	// Filtered listing
	rec := app.request("GET", "/api/v1/transactions?type=expense", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(data))
	}

	// Stats default to the current month
	rec = app.request("GET", "/api/v1/transactions/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed: %d %s", rec.Code, rec.Body.String())
	}
	stats := parseJSON(t, rec)["stats"].(map[string]interface{})
	if stats["total_income"] != "1000" {
		t.Errorf("expected total income 1000, got %v", stats["total_income"])
	}
	if stats["total_expense"] != "300" {
		t.Errorf("expected total expense 300, got %v", stats["total_expense"])
	}
	if stats["balance"] != "700" {
		t.Errorf("expected balance 700, got %v", stats["balance"])
	}
	if stats["transaction_count"] != float64(3) {
		t.Errorf("expected 3 transactions, got %v", stats["transaction_count"])
	}

	// All-time balance
	rec = app.request("GET", "/api/v1/transactions/balance", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance failed: %d %s", rec.Code, rec.Body.String())
	}
	balance := parseJSON(t, rec)["balance"].(map[string]interface{})
	if balance["balance"] != "700" {
		t.Errorf("expected balance 700, got %v", balance["balance"])
	}

	// Category breakdown sorted by spend
	rec = app.request("GET", "/api/v1/transactions/breakdown", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("breakdown failed: %d %s", rec.Code, rec.Body.String())
	}
	breakdown := parseJSON(t, rec)["breakdown"].([]interface{})
	if len(breakdown) != 1 {
		t.Fatalf("expected 1 breakdown row, got %d", len(breakdown))
	}
	row := breakdown[0].(map[string]interface{})
	if row["total"] != "300" {
		t.Errorf("expected 300 total for food, got %v", row["total"])
	}
	if row["count"] != float64(2) {
		t.Errorf("expected 2 transactions for food, got %v", row["count"])
	}

	// Month-over-month comparison against an empty previous month
	rec = app.request("GET", "/api/v1/transactions/comparison", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("comparison failed: %d %s", rec.Code, rec.Body.String())
	}
	comparison := parseJSON(t, rec)["comparison"].(map[string]interface{})
	current := comparison["current_month"].(map[string]interface{})
	if current["total_income"] != "1000" {
		t.Errorf("expected current income 1000, got %v", current["total_income"])
	}
	previous := comparison["previous_month"].(map[string]interface{})
	if previous["total_income"] != "0" {
		t.Errorf("expected previous income 0, got %v", previous["total_income"])
	}
	changes := comparison["changes"].(map[string]interface{})
	if changes["income_percentage"] != float64(100) {
		t.Errorf("expected 100%% income change, got %v", changes["income_percentage"])
	}
	if changes["balance_percentage"] != float64(100) {
		t.Errorf("expected 100%% balance change, got %v", changes["balance_percentage"])
	}
}

func TestTransactionFlow_CategoryTypeMismatch(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "mismatch@test.com", "password123")

	salaryID := app.createCategory(t, token, "Consulting", "income")

	body := fmt.Sprintf(`{"category_id":%q,"type":"expense","amount":50}`, salaryID)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "CATEGORY_TYPE_MISMATCH")
}

func TestTransactionFlow_UpdateAndDelete(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "txupdate@test.com", "password123")

	foodID := app.createCategory(t, token, "Dining", "expense")
	txID := app.createTransaction(t, token, foodID, "expense", 45.50)

	rec := app.request("PUT", "/api/v1/transactions/"+txID, `{"amount":60,"description":"dinner"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if tx["amount"] != "60" {
		t.Errorf("expected amount 60, got %v", tx["amount"])
	}
	if tx["description"] != "dinner" {
		t.Errorf("expected description dinner, got %v", tx["description"])
	}

	rec = app.request("DELETE", "/api/v1/transactions/"+txID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/transactions/"+txID, "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
