package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adcalc/internal/modules/calculator"
	"adcalc/internal/modules/portfolio"
	"adcalc/pkg/formulas"
)

type productRequest struct {
	Name   string            `json:"name"`
	Inputs calculator.Inputs `json:"inputs"`
}

// handleCreateProduct stores a new product with computed metrics.
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	product, err := s.products.Create(req.Name, req.Inputs)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create product")
		s.writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	s.writeJSON(w, http.StatusCreated, product)
}

// handleListProducts lists products, optionally sorted and filtered via
// query parameters: sort, order, min_roas, max_roas, min_profit,
// max_profit, profitable.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list products")
		s.writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	products = portfolio.FilterProducts(products, filter)

	if key := r.URL.Query().Get("sort"); key != "" {
		descending := r.URL.Query().Get("order") != "asc"
		products = portfolio.SortProducts(products, portfolio.SortKey(key), descending)
	}

	s.writeJSON(w, http.StatusOK, products)
}

// handleGetProduct returns one product by id.
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.products.Get(chi.URLParam(r, "id"))
	if errors.Is(err, portfolio.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	s.writeJSON(w, http.StatusOK, product)
}

// handleUpdateProduct replaces a product's name and inputs.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := s.products.Update(chi.URLParam(r, "id"), req.Name, req.Inputs)
	if errors.Is(err, portfolio.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	s.writeJSON(w, http.StatusOK, product)
}

// handleDeleteProduct removes a product. Its snapshots stay.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := s.products.Delete(chi.URLParam(r, "id"))
	if errors.Is(err, portfolio.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handlePortfolio aggregates all products into portfolio metrics.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list products")
		s.writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := map[string]interface{}{
		"metrics": portfolio.Aggregate(products),
	}
	if n := queryInt(r, "top", 0); n > 0 {
		response["top"] = portfolio.TopPerformers(products, portfolio.SortByProfit, n)
		response["bottom"] = portfolio.BottomPerformers(products, portfolio.SortByProfit, n)
	}

	s.writeJSON(w, http.StatusOK, response)
}

func filterFromQuery(r *http.Request) (portfolio.Filter, error) {
	var filter portfolio.Filter

	bounds := map[string]**float64{
		"min_roas":   &filter.MinROAS,
		"max_roas":   &filter.MaxROAS,
		"min_profit": &filter.MinProfit,
		"max_profit": &filter.MaxProfit,
	}
	for name, target := range bounds {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return portfolio.Filter{}, errors.New("invalid " + name)
		}
		*target = formulas.Ptr(v)
	}

	if raw := r.URL.Query().Get("profitable"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return portfolio.Filter{}, errors.New("invalid profitable")
		}
		filter.Profitable = &v
	}

	return filter, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
