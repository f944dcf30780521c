package handle

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"pos-backoffice/internal/order/app/services"
	"pos-backoffice/internal/order/domain/dto"
	"pos-backoffice/internal/order/domain/models"
)

type OrderItemHandler struct {
	orderService *services.OrderService
	log          zerolog.Logger
}

func NewOrderItemHandler(orderService *services.OrderService, log zerolog.Logger) *OrderItemHandler {
	return &OrderItemHandler{
		orderService: orderService,
		log:          log,
	}
}

func (h *OrderItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.orderService.GetItem(r.Context(), itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateStatus applies one state-machine transition to an order item. A stock
// shortfall on the PREPARING transition comes back as a structured 400.
func (h *OrderItemHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: "failed to parse JSON"})
		return
	}

	item, err := h.orderService.UpdateItemStatus(r.Context(), itemID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *OrderItemHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateItemQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: "failed to parse JSON"})
		return
	}

	item, err := h.orderService.UpdateItemQuantity(r.Context(), itemID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete soft-deletes an item by cancelling it; rows are never removed.
func (h *OrderItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.orderService.UpdateItemStatus(r.Context(), itemID, string(models.ItemCancelled))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
