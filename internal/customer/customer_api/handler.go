package customer_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"lunchbox-orders/internal/customer"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	"lunchbox-orders/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CustomerService *customer.Service
	Logger          *logger.Logger
}

func NewHandler(svc *customer.Service, log *logger.Logger) *Handler {
	return &Handler{CustomerService: svc, Logger: log}
}

// ListCustomers handles GET /api/customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.CustomerService.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCustomers: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "고객 정보를 불러오는 중 오류가 발생했습니다.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, customers)
}

// customerResponse adds the derived mirror count the storefront displays on
// the my-orders page.
type customerResponse struct {
	*models.Customer
	TotalOrders int `json:"total_orders"`
}

// GetCustomerByContact handles GET /api/customers/by-contact?contact=. An
// unknown contact responds with a JSON null body, matching the storefront's
// empty-state handling.
func (h *Handler) GetCustomerByContact(w http.ResponseWriter, r *http.Request) {
	contact := r.URL.Query().Get("contact")
	if contact == "" {
		utils.WriteError(w, http.StatusBadRequest, "연락처가 필요합니다.")
		return
	}

	found, err := h.CustomerService.ByContact(r.Context(), contact)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCustomerByContact: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "고객 정보를 불러오는 중 오류가 발생했습니다.")
		return
	}
	if found == nil {
		utils.WriteJSON(w, http.StatusOK, nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, customerResponse{
		Customer:    found,
		TotalOrders: found.TotalOrders(),
	})
}

// UpdateCustomer handles PATCH /api/customers/{customerId}.
// Body: {"is_blacklisted": bool}.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	var body struct {
		IsBlacklisted bool `json:"is_blacklisted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	updated, err := h.CustomerService.SetBlacklist(r.Context(), customerID, body.IsBlacklisted)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCustomer: %v", err))
		if errors.Is(err, customer.ErrCustomerNotFound) {
			utils.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}
