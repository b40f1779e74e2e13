/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate an owner's ledger with
	realistic data for demos and frontend work. Each scenario is a CSV
	export fed through the regular import driver, so loading one exercises
	the same profile, pairing and name-resolution path a real upload does.

AVAILABLE SCENARIOS:

	first-month:    Salary, rent and groceries on one checking account
	savings-sweep:  Two-leg transfers between checking and savings
	travel-fx:      Cross-currency transfers into a JPY wallet

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/load
	{"scenario_id": "savings-sweep"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description, profile and CSV

NOTE:

	Scenarios add to the caller's ledger; they never reset it. Loading the
	same scenario twice records its entries twice.

SEE ALSO:
  - handlers.go: Import handler
  - importer/driver.go: Import driver
*/
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario is a named demo import.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Profile     string `json:"profile"`

	csv string
}

var scenarios = []Scenario{
	{
		ID:          "first-month",
		Name:        "First Month",
		Description: "Opening salary, rent and everyday spending on one checking account",
		Profile:     "standard",
		csv: `Date,Type,Account,Category,Amount,Currency,Description
2024-01-01,income,Checking,Salary,3200.00,USD,January salary
2024-01-02,expense,Checking,Rent,1450.00,USD,Apartment
2024-01-05,expense,Checking,Groceries,86.40,USD,Weekly shop
2024-01-12,expense,Checking,Groceries,91.15,USD,Weekly shop
2024-01-14,expense,Checking,Dining,38.00,USD,Pizza night
2024-01-19,expense,Checking,Groceries,77.90,USD,Weekly shop
2024-01-26,expense,Checking,Utilities,120.33,USD,Electricity
`,
	},
	{
		ID:          "savings-sweep",
		Name:        "Savings Sweep",
		Description: "Transfers exported as two legs and paired back together",
		Profile:     "legs",
		csv: `Date,Account,Category,Amount,Currency,Note
2024-02-01 08:00,Checking,Salary,3200,USD,February salary
2024-02-01 09:00,Checking,to 'Savings',-500,USD,Monthly sweep
2024-02-01 09:05,Savings,from 'Checking',500,USD,Monthly sweep
2024-02-10 12:00,Checking,Groceries,-112.80,USD,
2024-02-15 18:00,Savings,to 'Checking',-150,USD,Top up
2024-02-16 07:30,Checking,from 'Savings',150,USD,Top up
`,
	},
	{
		ID:          "travel-fx",
		Name:        "Travel FX",
		Description: "Cross-currency transfers into a JPY travel wallet",
		Profile:     "standard",
		csv: `Date,Type,Account,Category,Amount,Currency,To Account,To Amount,To Currency,Description
2024-03-01,income,Checking,Salary,3200,USD,,,,March salary
2024-03-03,transfer,Checking,,400,USD,Travel Wallet,59200,JPY,Exchange before trip
2024-03-05,expense,Travel Wallet,Dining,4800,JPY,,,,Ramen
2024-03-06,expense,Travel Wallet,Transport,14170,JPY,,,,Rail pass
`,
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LoadScenario imports a demo scenario into the caller's ledger.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var scenario *Scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			scenario = &scenarios[i]
			break
		}
	}
	if scenario == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	profile, err := h.Profiles.Lookup(scenario.Profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Scenario profile missing", err)
		return
	}

	result, err := h.Importer.Import(r.Context(), ownerFrom(r.Context()), profile,
		strings.NewReader(scenario.csv), "USD")
	if err != nil {
		writeDomainError(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
