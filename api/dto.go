/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes exchanged with presentation clients. DTOs are deliberately
  separate from compliance types: the wire format can evolve without
  touching the engine, and engine types never grow json tags.
*/
package api

import "github.com/adeelfeb/dmfiresafety-sub000/compliance"

// =============================================================================
// SITES
// =============================================================================

type SiteDTO struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Address       string         `json:"address,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Archived      bool           `json:"archived"`
	ServiceMonths []int          `json:"service_months"`
	SystemMonths  []int          `json:"system_months"`
	ServiceTech   string         `json:"service_tech"`
	SystemTech    string         `json:"system_tech"`
	Appointment   AppointmentDTO `json:"appointment"`
}

type AppointmentDTO struct {
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Time  string `json:"time,omitempty"`
}

type CreateSiteRequest struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type AssignTechnicianRequest struct {
	Discipline string `json:"discipline"` // "extinguisher" | "system"
	Name       string `json:"name"`
}

type ToggleMonthRequest struct {
	Discipline string `json:"discipline"`
	Month      int    `json:"month"`
}

type SetAppointmentRequest struct {
	Month int    `json:"month"` // 0 clears
	Day   int    `json:"day"`
	Time  string `json:"time,omitempty"`
}

// =============================================================================
// ASSETS
// =============================================================================

type AssetDTO struct {
	ID              string `json:"id"`
	SiteID          string `json:"site_id"`
	Kind            string `json:"kind"`
	Category        string `json:"category"`
	Brand           string `json:"brand,omitempty"`
	Size            string `json:"size,omitempty"`
	LastServiceYear string `json:"last_service_year,omitempty"`
	BatteryDue      bool   `json:"battery_due,omitempty"`
}

type CreateAssetRequest struct {
	Kind            string `json:"kind"`
	Category        string `json:"category"`
	Brand           string `json:"brand,omitempty"`
	Size            string `json:"size,omitempty"`
	LastServiceYear string `json:"last_service_year,omitempty"`
	BatteryDue      bool   `json:"battery_due,omitempty"`
}

type ServiceAssetRequest struct {
	Year int `json:"year"`
}

// =============================================================================
// COMPLETIONS
// =============================================================================

type MarkCompleteRequest struct {
	Discipline  string `json:"discipline"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	ViewedMonth int    `json:"viewed_month,omitempty"`
}

type UndoCompleteRequest struct {
	Discipline string `json:"discipline"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

type CompletionDTO struct {
	ID            string `json:"id"`
	Discipline    string `json:"discipline"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	CompletedDate string `json:"completed_date"`
	CompletedBy   string `json:"completed_by"`
}

// =============================================================================
// OUT-FOR-SERVICE
// =============================================================================

type AddOutEntryRequest struct {
	Discipline string `json:"discipline"`
	Quantity   int    `json:"quantity"`
	Brand      string `json:"brand"`
	Size       string `json:"size"`
	Type       string `json:"type"`
	Year       string `json:"year"`
}

type UpdateOutEntryRequest struct {
	Discipline string `json:"discipline"`
	Quantity   int    `json:"quantity"`
	Year       string `json:"year"`
}

type ClearRequest struct {
	Discipline string `json:"discipline"`
	Key        string `json:"key"`
}

type OutLineDTO struct {
	Origin   string `json:"origin"`
	EntryID  string `json:"entry_id,omitempty"`
	Key      string `json:"key,omitempty"`
	Quantity int    `json:"quantity"`
	Year     string `json:"year,omitempty"`
}

type OutGroupDTO struct {
	Brand string       `json:"brand"`
	Size  string       `json:"size"`
	Type  string       `json:"type"`
	Total int          `json:"total"`
	Lines []OutLineDTO `json:"lines"`
}

// =============================================================================
// FORECAST REPORT
// =============================================================================

type ReportLineDTO struct {
	AssetID     string `json:"asset_id"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Brand       string `json:"brand,omitempty"`
	Size        string `json:"size,omitempty"`
	LastService string `json:"last_service,omitempty"`
	State       string `json:"state"`
	NextDue     int    `json:"next_due,omitempty"`
	BatteryDue  bool   `json:"battery_due,omitempty"`
}

type ForecastReportDTO struct {
	SiteID       string          `json:"site_id"`
	ForecastYear int             `json:"forecast_year"`
	TargetCount  int             `json:"target_count"`
	OverdueCount int             `json:"overdue_count"`
	UnknownCount int             `json:"unknown_count"`
	OKCount      int             `json:"ok_count"`
	TargetAgent  string          `json:"target_agent_total"`
	Lines        []ReportLineDTO `json:"lines"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func siteDTO(s *compliance.Site) SiteDTO {
	return SiteDTO{
		ID:            s.ID,
		Name:          s.Name,
		Address:       s.Address,
		Notes:         s.Notes,
		Archived:      s.Archived,
		ServiceMonths: intsOrEmpty(s.ServiceMonths),
		SystemMonths:  intsOrEmpty(s.SystemMonths),
		ServiceTech:   s.Tech(compliance.ServiceExtinguisher),
		SystemTech:    s.Tech(compliance.ServiceSystem),
		Appointment: AppointmentDTO{
			Month: s.Appointment.Month,
			Day:   s.Appointment.Day,
			Time:  s.Appointment.Time,
		},
	}
}

func assetDTO(a *compliance.Asset) AssetDTO {
	return AssetDTO{
		ID:              a.ID,
		SiteID:          a.SiteID,
		Kind:            string(a.Kind),
		Category:        string(a.Category),
		Brand:           a.Brand,
		Size:            a.Size,
		LastServiceYear: a.LastServiceYear,
		BatteryDue:      a.BatteryDue,
	}
}

func groupDTO(g compliance.Group) OutGroupDTO {
	dto := OutGroupDTO{
		Brand: g.Brand,
		Size:  g.Size,
		Type:  string(g.Type),
		Total: g.Total,
	}
	for _, l := range g.Lines {
		dto.Lines = append(dto.Lines, OutLineDTO{
			Origin:   string(l.Origin),
			EntryID:  l.EntryID,
			Key:      l.Key,
			Quantity: l.Quantity,
			Year:     l.Year,
		})
	}
	return dto
}

func intsOrEmpty(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

// parseDiscipline maps the wire value, defaulting to the extinguisher
// discipline the way the rest of the engine does.
func parseDiscipline(s string) compliance.ServiceType {
	if s == string(compliance.ServiceSystem) {
		return compliance.ServiceSystem
	}
	return compliance.ServiceExtinguisher
}
