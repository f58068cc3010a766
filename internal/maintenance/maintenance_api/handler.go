package maintenance_api

import (
	"fmt"
	"net/http"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/maintenance"
	"lunchbox-orders/internal/utils"
)

type Handler struct {
	MaintenanceService *maintenance.Service
	Logger             *logger.Logger
}

func NewHandler(svc *maintenance.Service, log *logger.Logger) *Handler {
	return &Handler{MaintenanceService: svc, Logger: log}
}

// FixSundayDates handles POST /api/admin/fix-sunday-dates.
func (h *Handler) FixSundayDates(w http.ResponseWriter, r *http.Request) {
	result, err := h.MaintenanceService.FixSundayDates(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("FixSundayDates: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "날짜 수정 중 오류가 발생했습니다.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// TrimWeeklyOrders handles POST /api/admin/trim-weekly-orders.
func (h *Handler) TrimWeeklyOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.MaintenanceService.TrimWeeklyOrders(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TrimWeeklyOrders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "날짜 정리 중 오류가 발생했습니다.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// ExtendWeeklyOrders handles POST /api/admin/extend-weekly-orders.
func (h *Handler) ExtendWeeklyOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.MaintenanceService.ExtendWeeklyOrders(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ExtendWeeklyOrders: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "날짜 추가 중 오류가 발생했습니다.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// ResetCapacity handles POST /api/admin/reset-capacity.
func (h *Handler) ResetCapacity(w http.ResponseWriter, r *http.Request) {
	result, err := h.MaintenanceService.ResetCapacity(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ResetCapacity: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "초기화 중 오류가 발생했습니다.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
