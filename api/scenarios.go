/*
scenarios.go - Demo data seeding

PURPOSE:
  Loads pre-built demo portfolios so the frontend can be exercised without
  hand-entering a customer base. Loading a scenario REPLACES the in-memory
  state and persists it.
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// Scenario describes one loadable demo portfolio.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []Scenario{
	{
		ID:          "small-portfolio",
		Name:        "Small portfolio",
		Description: "Two sites, mixed extinguishers and a kitchen suppression system, several units due",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario replaces the current state with a demo portfolio.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID != "small-portfolio" {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = smallPortfolio(h.Now())
	h.persist()
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ID})
}

func smallPortfolio(now time.Time) *compliance.AppData {
	year := now.Year()
	diner := &compliance.Site{
		ID:            "site-diner",
		Name:          "Lakeside Diner",
		Address:       "41 Shore Rd",
		Notes:         "Kitchen hood system; gate code 4417",
		ServiceMonths: []int{3, 9},
		SystemMonths:  []int{1, 7},
		ServiceTech:   "Maria Delgado",
		SystemTech:    "Maria Delgado",
	}
	warehouse := &compliance.Site{
		ID:            "site-warehouse",
		Name:          "Eastgate Warehouse",
		Address:       "900 Industrial Pkwy",
		ServiceMonths: []int{6},
		ServiceTech:   compliance.TechNone,
	}

	assets := []*compliance.Asset{
		{ID: "a-1", SiteID: diner.ID, Kind: compliance.KindExtinguisher, Category: "ABC", Brand: "Amerex", Size: "5lb", LastServiceYear: fmt.Sprint(year - 6)},
		{ID: "a-2", SiteID: diner.ID, Kind: compliance.KindExtinguisher, Category: "ABC", Brand: "Amerex", Size: "5lb", LastServiceYear: fmt.Sprint(year - 6)},
		{ID: "a-3", SiteID: diner.ID, Kind: compliance.KindExtinguisher, Category: "K", Brand: "Ansul", Size: "2.5 gal", LastServiceYear: fmt.Sprint(year - 2)},
		{ID: "a-4", SiteID: diner.ID, Kind: compliance.KindSystemTank, Category: "Wet Chemical", Brand: "Ansul", Size: "3 gal", LastServiceYear: fmt.Sprint(year - 12)},
		{ID: "a-5", SiteID: diner.ID, Kind: compliance.KindLight, Category: "Exit Light", Brand: "Lithonia", BatteryDue: true},
		{ID: "a-6", SiteID: warehouse.ID, Kind: compliance.KindExtinguisher, Category: "CO2", Brand: "Badger", Size: "10lb", LastServiceYear: fmt.Sprint(year - 5)},
		{ID: "a-7", SiteID: warehouse.ID, Kind: compliance.KindExtinguisher, Category: "ABC", Brand: "Amerex", Size: "10lb"},
	}

	return &compliance.AppData{Sites: []*compliance.Site{diner, warehouse}, Assets: assets}
}
