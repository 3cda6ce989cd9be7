package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adcalc/internal/modules/history"
	"adcalc/internal/modules/portfolio"
)

type snapshotRequest struct {
	ProductID string `json:"product_id"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
}

// handleCreateSnapshot captures a snapshot of one product.
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := s.products.Get(req.ProductID)
	if errors.Is(err, portfolio.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	snapshot, err := history.NewSnapshot(product, req.Date, req.Notes)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.snapshots.Insert(snapshot); err != nil {
		s.log.Error().Err(err).Msg("Failed to store snapshot")
		s.writeError(w, http.StatusInternalServerError, "failed to store snapshot")
		return
	}

	s.writeJSON(w, http.StatusCreated, snapshot)
}

// handleListSnapshots lists snapshots, optionally for one product or date
// range (?product_id, ?start, ?end).
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")

	var snapshots []history.Snapshot
	var err error
	if productID != "" {
		snapshots, err = s.snapshots.ListByProduct(productID)
	} else {
		snapshots, err = s.snapshots.List()
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list snapshots")
		s.writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if start != "" && end != "" {
		snapshots, err = history.SnapshotsInRange(snapshots, start, end)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	s.writeJSON(w, http.StatusOK, snapshots)
}

// handleDeleteSnapshot removes one snapshot by id.
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	err := s.snapshots.Delete(chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete snapshot")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleTrend returns the trend series and classification for one product
// (?product_id, ?metric, ?lookback).
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		s.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	snapshots, err := s.snapshots.ListByProduct(productID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list snapshots")
		s.writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	metric := history.TrendMetric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = history.TrendROAS
	}
	lookback := queryInt(r, "lookback", 4)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"points": history.ExtractTrend(snapshots, metric),
		"trend":  history.IdentifyTrend(snapshots, productID, lookback),
	})
}

// handleComparePeriods compares metric means between two date ranges
// (?current_start, ?current_end, ?previous_start, ?previous_end, optional
// ?product_id).
func (s *Server) handleComparePeriods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var snapshots []history.Snapshot
	var err error
	if productID := q.Get("product_id"); productID != "" {
		snapshots, err = s.snapshots.ListByProduct(productID)
	} else {
		snapshots, err = s.snapshots.List()
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list snapshots")
		s.writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	current, err := history.SnapshotsInRange(snapshots, q.Get("current_start"), q.Get("current_end"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	previous, err := history.SnapshotsInRange(snapshots, q.Get("previous_start"), q.Get("previous_end"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics := []history.TrendMetric{
		history.TrendROAS, history.TrendProfit, history.TrendSales, history.TrendSpend,
	}
	s.writeJSON(w, http.StatusOK, history.ComparePeriods(current, previous, metrics))
}

// handleSnapshotAll triggers the snapshot sweep immediately.
func (s *Server) handleSnapshotAll(w http.ResponseWriter, r *http.Request) {
	if err := s.sched.RunNow(s.snapshotJob); err != nil {
		s.log.Error().Err(err).Msg("Snapshot sweep failed")
		s.writeError(w, http.StatusInternalServerError, "snapshot sweep failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
