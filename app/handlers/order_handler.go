package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/ostapdev/go-shop/app/middlewares"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render    *render.Render
	orders    *services.OrderService
	validator *validator.Validate
}

func NewOrderHandler(r *render.Render, orders *services.OrderService, validator *validator.Validate) *OrderHandler {
	return &OrderHandler{render: r, orders: orders, validator: validator}
}

type orderLineForm struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity"`
}

type addItemForm struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type removeItemForm struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=0"`
}

type updateOrderForm struct {
	Items        []orderLineForm `json:"items"`
	PostOfficeID *uint           `json:"postId"`
	Status       string          `json:"status"`
}

type sendOrderForm struct {
	PostOfficeID *uint `json:"postId"`
}

type guestOrderForm struct {
	Phone        string          `json:"phone" validate:"required,e164"`
	PostOfficeID uint            `json:"postId" validate:"required"`
	Items        []orderLineForm `json:"items" validate:"required,min=1,dive"`
}

func targetLines(lines []orderLineForm) []services.TargetLine {
	if lines == nil {
		return nil
	}
	target := make([]services.TargetLine, 0, len(lines))
	for _, line := range lines {
		target = append(target, services.TargetLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return target
}

func (h *OrderHandler) Current(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	order, err := h.orders.GetCurrentOrder(r.Context(), identity.UserID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())
	query := r.URL.Query()

	orders, meta, err := h.orders.GetOrders(r.Context(), identity, parsePagination(r),
		query.Get("sortBy"), query.Get("sortOrder"))
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, listResponse{Items: orders, Meta: meta})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	order, err := h.orders.GetOrderByID(r.Context(), identity, mux.Vars(r)["id"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form addItemForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.AddItem(r.Context(), identity.UserID, form.ProductID, form.Quantity)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form removeItemForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.RemoveItem(r.Context(), identity.UserID, form.ProductID, form.Quantity)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	order, err := h.orders.ClearOrder(r.Context(), identity.UserID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form updateOrderForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.UpdateOrder(r.Context(), identity, mux.Vars(r)["id"],
		targetLines(form.Items), form.PostOfficeID, form.Status)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form sendOrderForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.SendOrder(r.Context(), identity.UserID, form.PostOfficeID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) CreateUnauth(w http.ResponseWriter, r *http.Request) {
	var form guestOrderForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	order, err := h.orders.CreateGuestOrder(r.Context(), form.Phone, form.PostOfficeID, targetLines(form.Items))
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	order, err := h.orders.CancelOrder(r.Context(), identity, mux.Vars(r)["id"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.CompleteOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, order)
}
