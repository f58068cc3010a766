package admin_api

import (
	"fmt"
	"net/http"

	"lunchbox-orders/internal/admin"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/utils"
)

type Handler struct {
	AdminService *admin.Service
	Logger       *logger.Logger
}

func NewHandler(svc *admin.Service, log *logger.Logger) *Handler {
	return &Handler{AdminService: svc, Logger: log}
}

// GetWeeklySummary handles GET /api/admin/summary.
func (h *Handler) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.AdminService.WeeklySummary(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetWeeklySummary: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "요약 정보를 불러오는 중 오류가 발생했습니다.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}
