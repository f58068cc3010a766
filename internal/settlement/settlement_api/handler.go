package settlement_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/settlement"
	"lunchbox-orders/internal/utils"
)

type Handler struct {
	SettlementService *settlement.Service
	Logger            *logger.Logger
}

func NewHandler(svc *settlement.Service, log *logger.Logger) *Handler {
	return &Handler{SettlementService: svc, Logger: log}
}

// GetSettlements handles GET /api/settlements?date=YYYY-MM-DD.
func (h *Handler) GetSettlements(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		utils.WriteError(w, http.StatusBadRequest, "날짜가 필요합니다.")
		return
	}

	stats, err := h.SettlementService.StatsByDate(r.Context(), date)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSettlements: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "정산 정보를 불러오는 중 오류가 발생했습니다.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}

// SettleAll handles PATCH /api/settlements. Body: {"date": "YYYY-MM-DD"}.
func (h *Handler) SettleAll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		utils.WriteError(w, http.StatusBadRequest, "날짜가 필요합니다.")
		return
	}

	settled, err := h.SettlementService.SettleAllByDate(r.Context(), body.Date)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SettleAll: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "정산 처리 중 오류가 발생했습니다.")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"settled": settled,
	})
}
