package notice_api

import (
	"context"
	"fmt"
	"net/http"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	"lunchbox-orders/internal/utils"
)

// NoticeStore loads the current storefront notice.
type NoticeStore interface {
	LatestActive(ctx context.Context) (*models.Notice, error)
}

type Handler struct {
	DB     NoticeStore
	Logger *logger.Logger
}

func NewHandler(db NoticeStore, log *logger.Logger) *Handler {
	return &Handler{DB: db, Logger: log}
}

// GetNotice handles GET /api/notices. The storefront renders nothing when
// the body is null, so lookup failures degrade to null instead of an error
// status.
func (h *Handler) GetNotice(w http.ResponseWriter, r *http.Request) {
	notice, err := h.DB.LatestActive(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetNotice: %v", err))
		utils.WriteJSON(w, http.StatusOK, nil)
		return
	}
	if notice == nil {
		utils.WriteJSON(w, http.StatusOK, nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, notice)
}
