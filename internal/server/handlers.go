package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adcalc/internal/modules/alerts"
	"adcalc/internal/modules/calculator"
	"adcalc/internal/modules/export"
	"adcalc/internal/modules/planning"
	"adcalc/internal/modules/saved"
	"adcalc/internal/modules/upc"
	"adcalc/pkg/formulas"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "adcalc",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleCalculate computes the full campaign metric set for one input set.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var inputs calculator.Inputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics := calculator.Compute(inputs)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": metrics,
		"status":  calculator.StatusFor(metrics.MarginAfterAdsPct),
	})
}

// handleUPCMetrics computes per-SKU metrics for a submitted batch.
func (s *Server) handleUPCMetrics(w http.ResponseWriter, r *http.Request) {
	var data []upc.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.writeJSON(w, http.StatusOK, upc.ComputeAllMetrics(data))
}

// handleUPCImport parses an Ads Manager CSV export from the request body.
// The default gross margin from configuration is applied to every SKU.
func (s *Server) handleUPCImport(w http.ResponseWriter, r *http.Request) {
	rows, err := upc.ParseCSV(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := upc.RowsToData(rows, formulas.Ptr(s.cfg.DefaultMarginPct))
	metrics := upc.ComputeAllMetrics(data)

	s.log.Info().Int("rows", len(rows)).Msg("CSV import parsed")
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": len(rows),
		"upcs":     data,
		"metrics":  metrics,
	})
}

// handleUPCAggregate rolls a batch of SKU metrics up into totals.
func (s *Server) handleUPCAggregate(w http.ResponseWriter, r *http.Request) {
	var metrics []upc.Metrics
	if err := json.NewDecoder(r.Body).Decode(&metrics); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"totals":          upc.Aggregate(metrics),
		"weighted_margin": upc.WeightedMargin(metrics),
		"underperforming": upc.Underperforming(metrics),
	})
}

type planningRequest struct {
	AdSpend               *float64           `json:"ad_spend"`
	GrossMarginPercent    *float64           `json:"gross_margin_percent"`
	CommissionPercent     *float64           `json:"commission_percent"`
	TargetProfitMarginPct *float64           `json:"target_profit_margin_percent"`
	Inputs                *calculator.Inputs `json:"inputs"`
	ChangePercents        []float64          `json:"change_percents"`
}

// handleRequiredROAS returns the ROAS needed for a target profit margin.
func (s *Server) handleRequiredROAS(w http.ResponseWriter, r *http.Request) {
	var req planningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"required_roas":  planning.RequiredROAS(req.GrossMarginPercent, req.CommissionPercent, req.TargetProfitMarginPct),
		"breakeven_roas": planning.BreakEvenROAS(req.GrossMarginPercent, req.CommissionPercent),
	})
}

// handleBreakEven returns the full break-even picture for a planned spend.
func (s *Server) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	var req planningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AdSpend == nil {
		s.writeError(w, http.StatusBadRequest, "ad_spend is required")
		return
	}

	result := planning.BreakEvenAnalysis(*req.AdSpend, req.GrossMarginPercent, req.CommissionPercent)
	if result == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "campaign cannot break even with these margins")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleScenarios runs a ladder of ad-spend what-if scenarios.
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	var req planningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Inputs == nil {
		s.writeError(w, http.StatusBadRequest, "inputs are required")
		return
	}

	changes := req.ChangePercents
	if len(changes) == 0 {
		changes = []float64{-50, -25, -10, 10, 25, 50}
	}

	s.writeJSON(w, http.StatusOK, planning.AdSpendScenarios(*req.Inputs, changes))
}

type saveRequest struct {
	Inputs calculator.Inputs `json:"inputs"`
}

// handleListSaved lists all save names.
func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	names, err := s.saved.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list saved inputs")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"names": names})
}

// handleSaveNamed stores inputs under a name.
func (s *Server) handleSaveNamed(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.saved.SaveNamed(chi.URLParam(r, "name"), req.Inputs); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleLoadNamed returns the inputs saved under a name.
func (s *Server) handleLoadNamed(w http.ResponseWriter, r *http.Request) {
	inputs, err := s.saved.LoadNamed(chi.URLParam(r, "name"))
	if errors.Is(err, saved.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no saved inputs under that name")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load saved inputs")
		return
	}
	s.writeJSON(w, http.StatusOK, inputs)
}

// handleDeleteNamed removes a named save.
func (s *Server) handleDeleteNamed(w http.ResponseWriter, r *http.Request) {
	err := s.saved.DeleteNamed(chi.URLParam(r, "name"))
	if errors.Is(err, saved.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no saved inputs under that name")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete saved inputs")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAutosave writes the autosave slot.
func (s *Server) handleAutosave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.saved.Autosave(req.Inputs); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to autosave")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// handleLoadAutosave returns the autosave slot.
func (s *Server) handleLoadAutosave(w http.ResponseWriter, r *http.Request) {
	inputs, err := s.saved.LoadAutosave()
	if errors.Is(err, saved.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "nothing autosaved yet")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load autosave")
		return
	}
	s.writeJSON(w, http.StatusOK, inputs)
}

// handleExportSummary streams a campaign summary CSV for posted inputs.
func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	var inputs calculator.Inputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="campaign_summary.csv"`)
	if err := export.WriteCampaignSummary(w, inputs, calculator.Compute(inputs)); err != nil {
		s.log.Error().Err(err).Msg("Failed to write summary CSV")
	}
}

// handleExportUPCs streams a per-SKU CSV table for posted SKU data.
func (s *Server) handleExportUPCs(w http.ResponseWriter, r *http.Request) {
	var data []upc.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="upc_metrics.csv"`)
	if err := export.WriteUPCTable(w, upc.ComputeAllMetrics(data)); err != nil {
		s.log.Error().Err(err).Msg("Failed to write UPC CSV")
	}
}

type alertsRequest struct {
	Inputs calculator.Inputs `json:"inputs"`
	UPCs   []upc.Data        `json:"upcs"`
}

// handleAlerts evaluates alert rules over a campaign plus optional SKUs.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	var req alertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics := calculator.Compute(req.Inputs)
	triggered := alerts.Evaluate(metrics, upc.ComputeAllMetrics(req.UPCs))

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":   triggered,
		"critical": alerts.HasCritical(triggered),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
