package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ostapdev/go-shop/app/middlewares"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type FavouriteHandler struct {
	render     *render.Render
	favourites *services.FavouriteService
	validator  *validator.Validate
}

func NewFavouriteHandler(r *render.Render, favourites *services.FavouriteService, validator *validator.Validate) *FavouriteHandler {
	return &FavouriteHandler{render: r, favourites: favourites, validator: validator}
}

type favouriteForm struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
}

func (h *FavouriteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	products, err := h.favourites.GetFavourites(r.Context(), identity.UserID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, products)
}

func (h *FavouriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form favouriteForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	products, err := h.favourites.AddFavourite(r.Context(), identity.UserID, form.ProductID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, products)
}

func (h *FavouriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form favouriteForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	products, err := h.favourites.RemoveFavourite(r.Context(), identity.UserID, form.ProductID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, products)
}
