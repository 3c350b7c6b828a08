/*
handlers.go - HTTP API handlers for the compliance engine

PURPOSE:
  Exposes the service lifecycle engine via REST. Handlers parse requests,
  call the engine's pure functions and mutation entry points, and persist
  the updated state. All due/carry-over/aggregation rules live in the
  compliance package - nothing here re-derives them.

STATE MODEL:
  The full AppData bag is held in memory; every mutation runs to completion
  under one mutex before the next request is processed, matching the
  single-user, event-driven execution model. Persistence is fire-and-forget:
  the handler schedules a save and answers without awaiting it, so a rapid
  sequence of completions and undos stays consistent in memory even when the
  persisted copy lags. Last write wins across sessions.

ERROR HANDLING:
  - 400: invalid input
  - 404: unknown site/asset/entry
  - 500: store failures
  Engine-level "failures" (duplicate mark-complete, undo of nothing) are
  no-ops by design and answer 200.

SEE ALSO:
  - dto.go: wire shapes
  - server.go: routing
  - compliance: the engine itself
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Log    *logrus.Logger
	Policy compliance.IntervalPolicy

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	store compliance.Store
	views *compliance.ViewCache

	mu   sync.Mutex
	data *compliance.AppData
}

// NewHandler creates a handler over the given store, loading any previously
// saved state.
func NewHandler(ctx context.Context, store compliance.Store, policy compliance.IntervalPolicy, log *logrus.Logger) (*Handler, error) {
	if policy == nil {
		policy = compliance.DefaultIntervalPolicy{}
	}
	if log == nil {
		log = logrus.New()
	}
	data, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = &compliance.AppData{}
	}
	return &Handler{
		Log:    log,
		Policy: policy,
		Now:    time.Now,
		store:  store,
		views:  compliance.NewViewCache(policy),
		data:   data,
	}, nil
}

// persist schedules a fire-and-forget save of the current state. The caller
// still holds h.mu; the snapshot is cloned before the goroutine starts so the
// write never races later mutations.
func (h *Handler) persist() {
	snapshot := compliance.CloneAppData(h.data)
	go func() {
		if err := h.store.Save(context.Background(), snapshot); err != nil {
			h.Log.WithError(err).Error("failed to persist state")
		}
	}()
}

// actor returns the acting user's name from the identity layer.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// =============================================================================
// SITE HANDLERS
// =============================================================================

// ListSites returns all non-archived sites.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	dtos := []SiteDTO{}
	for _, s := range h.data.Sites {
		if s.Archived {
			continue
		}
		dtos = append(dtos, siteDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, siteDTO(s))
}

func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Site name is required", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if h.data.SiteByID(id) != nil {
		writeError(w, http.StatusConflict, "Site already exists", compliance.ErrDuplicateID)
		return
	}
	site := &compliance.Site{ID: id, Name: req.Name, Address: req.Address, Notes: req.Notes}
	h.data.Sites = append(h.data.Sites, site)
	h.persist()
	writeJSON(w, http.StatusCreated, siteDTO(site))
}

// ArchiveSite flags a site as archived. Its assets stay on record.
func (h *Handler) ArchiveSite(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	s.Archived = true
	h.persist()
	writeJSON(w, http.StatusOK, siteDTO(s))
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

func (h *Handler) ListSiteAssets(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	siteID := chi.URLParam(r, "id")
	if h.data.SiteByID(siteID) == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	dtos := []AssetDTO{}
	for _, a := range h.data.SiteAssets(siteID) {
		dtos = append(dtos, assetDTO(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	siteID := chi.URLParam(r, "id")
	if h.data.SiteByID(siteID) == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	asset := &compliance.Asset{
		ID:              uuid.NewString(),
		SiteID:          siteID,
		Kind:            compliance.AssetKind(req.Kind),
		Category:        compliance.Category(req.Category),
		Brand:           req.Brand,
		Size:            req.Size,
		LastServiceYear: req.LastServiceYear,
		BatteryDue:      req.BatteryDue,
	}
	h.data.Assets = append(h.data.Assets, asset)
	h.persist()
	writeJSON(w, http.StatusCreated, assetDTO(asset))
}

// ServiceAsset is the explicit per-asset "Service & Save" action - the only
// path that advances an asset's last-service year.
func (h *Handler) ServiceAsset(w http.ResponseWriter, r *http.Request) {
	var req ServiceAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	a := h.data.AssetByID(chi.URLParam(r, "id"))
	if a == nil {
		writeError(w, http.StatusNotFound, "Asset not found", compliance.ErrAssetNotFound)
		return
	}
	if err := compliance.ServiceAsset(a, req.Year); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service year", err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusOK, assetDTO(a))
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

func (h *Handler) AssignTechnician(w http.ResponseWriter, r *http.Request) {
	var req AssignTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	compliance.AssignTechnician(s, parseDiscipline(req.Discipline), req.Name, int(h.Now().Month()))
	h.persist()
	writeJSON(w, http.StatusOK, siteDTO(s))
}

func (h *Handler) ToggleMonth(w http.ResponseWriter, r *http.Request) {
	var req ToggleMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	compliance.ToggleMonth(s, parseDiscipline(req.Discipline), req.Month)
	h.persist()
	writeJSON(w, http.StatusOK, siteDTO(s))
}

func (h *Handler) SetAppointment(w http.ResponseWriter, r *http.Request) {
	var req SetAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	compliance.SetAppointment(s, req.Month, req.Day, req.Time)
	h.persist()
	writeJSON(w, http.StatusOK, siteDTO(s))
}

// =============================================================================
// COMPLETION HANDLERS
// =============================================================================

func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	dtos := []CompletionDTO{}
	for _, c := range s.CompletedServices {
		dtos = append(dtos, completionDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkComplete marks a period complete, carry-over included. Duplicate
// tuples are absorbed as no-ops and answer 200 with an empty list.
func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	var req MarkCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year <= 0 || req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid year/month", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	written := compliance.MarkComplete(s, compliance.CompleteInput{
		Type:        parseDiscipline(req.Discipline),
		Year:        req.Year,
		Month:       req.Month,
		Actor:       actor(r),
		ViewedMonth: req.ViewedMonth,
	}, h.Now())

	dtos := []CompletionDTO{}
	for _, c := range written {
		dtos = append(dtos, completionDTO(c))
	}
	if len(written) > 0 {
		h.persist()
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) UndoComplete(w http.ResponseWriter, r *http.Request) {
	var req UndoCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	if compliance.UndoComplete(s, parseDiscipline(req.Discipline), req.Year, req.Month) {
		h.persist()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// OUT-FOR-SERVICE HANDLERS
// =============================================================================

// OutList returns the merged, de-duplicated out-for-service view for one
// discipline. ?discipline= selects it, ?year= overrides the reference year.
func (h *Handler) OutList(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	discipline := parseDiscipline(r.URL.Query().Get("discipline"))
	refYear := h.queryYear(r, "year")

	groups := h.views.View(s, h.data.SiteAssets(s.ID), discipline, refYear)
	dtos := []OutGroupDTO{}
	for _, g := range groups {
		dtos = append(dtos, groupDTO(g))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddOutEntry(w http.ResponseWriter, r *http.Request) {
	var req AddOutEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be positive", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	entry := compliance.AddManualEntry(s, parseDiscipline(req.Discipline),
		req.Quantity, req.Brand, req.Size, compliance.Category(req.Type), req.Year)
	h.persist()
	writeJSON(w, http.StatusCreated, OutLineDTO{
		Origin:   string(compliance.OriginManual),
		EntryID:  entry.ID,
		Quantity: entry.Quantity,
		Year:     entry.Year,
	})
}

func (h *Handler) UpdateOutEntry(w http.ResponseWriter, r *http.Request) {
	var req UpdateOutEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	if !compliance.UpdateManualEntry(s, parseDiscipline(req.Discipline),
		chi.URLParam(r, "entryID"), req.Quantity, req.Year) {
		writeError(w, http.StatusNotFound, "Entry not found", compliance.ErrEntryNotFound)
		return
	}
	h.persist()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) DeleteOutEntry(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	discipline := parseDiscipline(r.URL.Query().Get("discipline"))
	if !compliance.DeleteManualEntry(s, discipline, chi.URLParam(r, "entryID")) {
		writeError(w, http.StatusNotFound, "Entry not found", compliance.ErrEntryNotFound)
		return
	}
	h.persist()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearAutoLine converts an auto-synced line into a persisted manual entry.
// The key must match a currently computed auto line; the underlying assets
// are never touched.
func (h *Handler) ClearAutoLine(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	discipline := parseDiscipline(req.Discipline)
	refYear := h.queryYear(r, "year")

	assets := h.data.SiteAssets(s.ID)
	for _, line := range compliance.AutoEntries(h.Policy, assets, s.OutList(discipline), discipline, refYear) {
		if line.Key != req.Key {
			continue
		}
		entry := compliance.Clear(s, line, refYear)
		h.persist()
		writeJSON(w, http.StatusOK, OutLineDTO{
			Origin:   string(compliance.OriginManual),
			EntryID:  entry.ID,
			Quantity: entry.Quantity,
			Year:     entry.Year,
		})
		return
	}
	writeError(w, http.StatusNotFound, "Auto line not found", compliance.ErrEntryNotFound)
}

// =============================================================================
// FORECAST HANDLER
// =============================================================================

func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.data.SiteByID(chi.URLParam(r, "id"))
	if s == nil {
		writeError(w, http.StatusNotFound, "Site not found", compliance.ErrSiteNotFound)
		return
	}
	forecastYear := h.queryYear(r, "year")
	currentYear := h.Now().Year()

	report := compliance.BuildForecastReport(h.Policy, s, h.data.SiteAssets(s.ID), forecastYear, currentYear)
	dto := ForecastReportDTO{
		SiteID:       report.SiteID,
		ForecastYear: report.ForecastYear,
		TargetCount:  report.TargetCount,
		OverdueCount: report.OverdueCount,
		UnknownCount: report.UnknownCount,
		OKCount:      report.OKCount,
		TargetAgent:  report.TargetAgent.String(),
		Lines:        []ReportLineDTO{},
	}
	for _, l := range report.Lines {
		dto.Lines = append(dto.Lines, ReportLineDTO{
			AssetID:     l.AssetID,
			Kind:        string(l.Kind),
			Category:    string(l.Category),
			Brand:       l.Brand,
			Size:        l.Size,
			LastService: l.LastService,
			State:       string(l.Classification.State),
			NextDue:     l.Classification.NextDue,
			BatteryDue:  l.BatteryDue,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func completionDTO(c compliance.ServiceCompletion) CompletionDTO {
	return CompletionDTO{
		ID:            c.ID,
		Discipline:    string(c.Type),
		Year:          c.Year,
		Month:         c.Month,
		CompletedDate: c.CompletedDate.UTC().Format(time.RFC3339),
		CompletedBy:   c.CompletedBy,
	}
}

// queryYear reads an optional ?year= override, defaulting to the current year.
func (h *Handler) queryYear(r *http.Request, param string) int {
	if v := r.URL.Query().Get(param); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			return y
		}
	}
	return h.Now().Year()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
