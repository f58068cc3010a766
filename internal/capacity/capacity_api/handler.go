package capacity_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lunchbox-orders/internal/capacity"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	"lunchbox-orders/internal/utils"
)

type Handler struct {
	Capacity *capacity.Service
	Logger   *logger.Logger
}

func NewHandler(svc *capacity.Service, log *logger.Logger) *Handler {
	return &Handler{Capacity: svc, Logger: log}
}

// GetCapacities handles GET /api/capacity?dates=a,b,c. A scan failure
// degrades to default snapshots so the order form stays usable.
func (h *Handler) GetCapacities(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("dates")
	if raw == "" {
		utils.WriteError(w, http.StatusBadRequest, "날짜가 필요합니다.")
		return
	}
	dateKeys := strings.Split(raw, ",")

	capacities, err := h.Capacity.Capacities(r.Context(), dateKeys)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCapacities: %v", err))
		defaults := make([]models.DailyCapacity, len(dateKeys))
		for i, d := range dateKeys {
			defaults[i] = models.DefaultCapacity(d)
		}
		utils.WriteJSON(w, http.StatusOK, defaults)
		return
	}

	utils.WriteJSON(w, http.StatusOK, capacities)
}

// UpdateCapacity handles POST /api/capacity. The quota is a fixed constant
// and is_closed has no backing storage, so nothing is persisted: the handler
// returns the derived snapshot for the date.
func (h *Handler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date     string `json:"date"`
		MaxCapa  *int   `json:"max_capa"`
		IsClosed *bool  `json:"is_closed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
		utils.WriteError(w, http.StatusBadRequest, "날짜가 필요합니다.")
		return
	}

	if body.MaxCapa != nil || body.IsClosed != nil {
		h.Logger.Warn("CAPACITY", fmt.Sprintf("capacity override for %s ignored: quota is fixed", body.Date))
	}

	capacities, err := h.Capacity.Capacities(r.Context(), []string{body.Date})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCapacity: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, capacities[0])
}
