package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ecobazaar/internal/recommend"
)

type RecommendHandler struct {
	Engine *recommend.Engine
}

func (h *RecommendHandler) Register(r *chi.Mux) {
	r.Get("/recommendations/greener/{id}", h.greenerAlternatives)
	r.Get("/recommendations/eco-friendly", h.ecoFriendly)
	r.Get("/recommendations/similar/{id}", h.similar)
	r.Get("/recommendations/best-value", h.bestValue)
	r.Get("/recommendations/carbon-savings", h.carbonSavings)
}

func limitParam(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (h *RecommendHandler) greenerAlternatives(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Engine.GreenerAlternatives(ctx, urlParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *RecommendHandler) ecoFriendly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Engine.EcoFriendlyRecommendations(ctx, limitParam(r, 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *RecommendHandler) similar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Engine.SimilarProducts(ctx, urlParam(r, "id"), limitParam(r, 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *RecommendHandler) bestValue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Engine.BestEcoValue(ctx, r.URL.Query().Get("category"), limitParam(r, 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *RecommendHandler) carbonSavings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	current, alternative := q.Get("current"), q.Get("alternative")
	if current == "" || alternative == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "current and alternative product ids required"})
		return
	}
	qty := 1
	if v := q.Get("qty"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "qty must be a positive integer"})
			return
		}
		qty = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cmp, err := h.Engine.CarbonSavings(ctx, current, alternative, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
