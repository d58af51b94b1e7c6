package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"ecobazaar/internal/redisx"
	"ecobazaar/internal/report"
	"ecobazaar/internal/users"
)

type ReportsHandler struct {
	Aggregator *report.Aggregator
	Users      *users.Repo
	Redis      *redis.Client
}

func (h *ReportsHandler) Register(r *chi.Mux) {
	r.Get("/reports/purchases", h.purchaseReport)
	r.Get("/reports/sales", h.salesReport)
	r.Get("/leaderboard", h.leaderboard)
}

func monthParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	month := r.URL.Query().Get("month")
	if month == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month query parameter required (YYYY-MM)"})
		return "", false
	}
	return month, true
}

func (h *ReportsHandler) purchaseReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Aggregator.UserPurchaseReport(ctx, actor.ID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) salesReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != users.RoleSeller && actor.Role != users.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "seller or admin only"})
		return
	}
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Aggregator.SellerSalesReport(ctx, actor.ID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name,omitempty"`
	EcoScore int    `json:"eco_score"`
}

// leaderboard serves the eco score ranking. The Redis ZSET maintained
// by the score worker is the fast path; the user table is the truth
// when the projection is empty or Redis is down.
func (h *ReportsHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit := limitParam(r, 10)

	if h.Redis != nil {
		zs, err := h.Redis.ZRevRangeWithScores(ctx, redisx.KeyEcoScoreLeaderboard, 0, int64(limit-1)).Result()
		if err == nil && len(zs) > 0 {
			out := make([]LeaderboardEntry, 0, len(zs))
			for _, z := range zs {
				id, _ := z.Member.(string)
				out = append(out, LeaderboardEntry{UserID: id, EcoScore: int(z.Score)})
			}
			writeJSON(w, http.StatusOK, out)
			return
		}
	}

	us, err := h.Users.Leaderboard(ctx, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]LeaderboardEntry, 0, len(us))
	for _, u := range us {
		out = append(out, LeaderboardEntry{UserID: u.ID, Name: u.Name, EcoScore: u.EcoScore})
	}
	writeJSON(w, http.StatusOK, out)
}
