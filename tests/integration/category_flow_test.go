package integration

import (
	"net/http"
	"testing"

	"cashdash/internal/testutil"
)

func TestCategoryFlow_CRUDAndDeleteUncategorizes(t *testing.T) {
	app := setupApp(t)
	app.linkBank(t, "public-1", "access-1", "item-1")
	app.Provider.SetTransactions("access-1", testutil.ProviderTransaction("rent-mar", "1800", "2024-03-01"))
	expectStatus(t, app.request("POST", "/api/v1/plaid/sync", ""), http.StatusOK)

	// Create
	rec := app.request("POST", "/api/v1/categories", `{"name":"Housing","type":"outflow"}`)
	expectStatus(t, rec, http.StatusCreated)
	housingID := parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	// Same name and type conflicts; same name with the other type does not
	rec = app.request("POST", "/api/v1/categories", `{"name":"Housing","type":"outflow"}`)
	expectStatus(t, rec, http.StatusConflict)
	rec = app.request("POST", "/api/v1/categories", `{"name":"Housing","type":"inflow"}`)
	expectStatus(t, rec, http.StatusCreated)

	// List is ordered by type then name
	rec = app.request("GET", "/api/v1/categories", "")
	expectStatus(t, rec, http.StatusOK)
	cats := parseJSON(t, rec)["categories"].([]interface{})
	if len(cats) != 2 || cats[0].(map[string]interface{})["type"] != "inflow" {
		t.Errorf("expected inflow first, got %v", cats)
	}

	// Update
	rec = app.request("PUT", "/api/v1/categories/"+housingID, `{"name":"Rent","color":"#123456"}`)
	expectStatus(t, rec, http.StatusOK)
	updated := parseJSON(t, rec)["category"].(map[string]interface{})
	if updated["name"] != "Rent" || updated["color"] != "#123456" {
		t.Errorf("unexpected update %v", updated)
	}

	// Assign, then delete the category
	rec = app.request("GET", "/api/v1/transactions", "")
	txnID := parseJSON(t, rec)["data"].([]interface{})[0].(map[string]interface{})["id"].(string)
	rec = app.request("POST", "/api/v1/transactions/assign-category",
		`{"transaction_id":"`+txnID+`","category_id":"`+housingID+`"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/transactions?category_id="+housingID, "")
	if parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Error("expected one transaction in Rent")
	}

	rec = app.request("DELETE", "/api/v1/categories/"+housingID, "")
	expectStatus(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/categories/"+housingID, "")
	expectStatus(t, rec, http.StatusNotFound)

	rec = app.request("GET", "/api/v1/transactions/"+txnID, "")
	expectStatus(t, rec, http.StatusOK)
	if cid, ok := parseJSON(t, rec)["transaction"].(map[string]interface{})["category_id"]; ok && cid != nil {
		t.Errorf("expected transaction to be uncategorized, got %v", cid)
	}

	rec = app.request("GET", "/api/v1/transactions?category_id=uncategorized", "")
	if parseJSON(t, rec)["total_items"].(float64) != 1 {
		t.Error("expected the rent transaction to be listed as uncategorized")
	}
}

func TestCategoryFlow_AssignUnknownCategory(t *testing.T) {
	app := setupApp(t)
	app.linkBank(t, "public-1", "access-1", "item-1")
	app.Provider.SetTransactions("access-1", testutil.ProviderTransaction("t-1", "5", "2024-03-02"))
	expectStatus(t, app.request("POST", "/api/v1/plaid/sync", ""), http.StatusOK)

	rec := app.request("GET", "/api/v1/transactions", "")
	txnID := parseJSON(t, rec)["data"].([]interface{})[0].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/transactions/assign-category",
		`{"transaction_id":"`+txnID+`","category_id":"0190d7a4-0000-7000-8000-000000000000"}`)
	expectStatus(t, rec, http.StatusNotFound)
	if code := parseJSON(t, rec)["error"].(map[string]interface{})["code"]; code != "CATEGORY_NOT_FOUND" {
		t.Errorf("unexpected error code %v", code)
	}
}
