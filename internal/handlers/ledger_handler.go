package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/soathero/backend/internal/models"
	"github.com/soathero/backend/internal/services"
)

type LedgerHandler struct {
	ledger    *services.LedgerService
	stats     *services.StatsService
	threshold int64
}

func NewLedgerHandler(ledger *services.LedgerService, stats *services.StatsService, lowBalanceThreshold int64) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, stats: stats, threshold: lowBalanceThreshold}
}

// Balance returns the current bolsa state
// @Summary Get the bolsa balance
// @Tags bolsa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{id=int,saldo_actual=int,saldo_bajo=bool,fecha_actualizacion=string}
// @Router /bolsa/saldo [get]
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.CurrentBalance(r.Context())
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":                  account.ID,
		"saldo_actual":        account.Balance,
		"saldo_bajo":          account.Balance < h.threshold,
		"fecha_actualizacion": account.UpdatedAt,
	})
}

// History returns the posting log
// @Summary List bolsa movements
// @Tags bolsa
// @Produce json
// @Security BearerAuth
// @Param referencia query string false "Reference kind" Enums(TOPUP, ISSUANCE, REVISION)
// @Param desde query string false "RFC3339 lower bound"
// @Success 200 {array} models.Posting
// @Router /bolsa/movimientos [get]
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	var filter services.HistoryFilter
	if kindParam := r.URL.Query().Get("referencia"); kindParam != "" {
		kind := models.ReferenceKind(kindParam)
		switch kind {
		case models.RefTopUp, models.RefIssuance, models.RefRevision:
			filter.ReferenceKind = &kind
		default:
			services.SendErrorResponse(w, "Unknown reference kind", http.StatusBadRequest, nil)
			return
		}
	}
	if sinceParam := r.URL.Query().Get("desde"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			services.SendErrorResponse(w, "desde must be RFC3339", http.StatusBadRequest, nil)
			return
		}
		filter.Since = &since
	}

	postings, err := h.ledger.History(r.Context(), filter)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(postings)
}

// Stats returns the dashboard aggregates
// @Summary Get dashboard stats
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param fecha query string false "Day to aggregate (2006-01-02, default today)"
// @Success 200 {object} models.DashboardStats
// @Router /dashboard/stats [get]
func (h *LedgerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("GET", "/dashboard/stats"))
	defer timer.ObserveDuration()

	day := time.Now()
	if dayParam := r.URL.Query().Get("fecha"); dayParam != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dayParam, time.Local)
		if err != nil {
			services.SendErrorResponse(w, "fecha must be 2006-01-02", http.StatusBadRequest, nil)
			return
		}
		day = parsed
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	stats, err := h.stats.Stats(r.Context(), dayStart, dayEnd)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
