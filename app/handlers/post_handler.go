package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type PostHandler struct {
	render *render.Render
	posts  *services.PostService
}

func NewPostHandler(r *render.Render, posts *services.PostService) *PostHandler {
	return &PostHandler{render: r, posts: posts}
}

func (h *PostHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.posts.GetRegions(r.Context())
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, regions)
}

func (h *PostHandler) Settlements(w http.ResponseWriter, r *http.Request) {
	regionID, err := parseUintParam(mux.Vars(r)["regionId"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}

	settlements, err := h.posts.GetSettlements(r.Context(), regionID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, settlements)
}

func (h *PostHandler) Offices(w http.ResponseWriter, r *http.Request) {
	settlementID, err := parseUintParam(mux.Vars(r)["settlementId"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}

	offices, err := h.posts.GetOffices(r.Context(), settlementID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, offices)
}
