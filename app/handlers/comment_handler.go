package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/ostapdev/go-shop/app/middlewares"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type CommentHandler struct {
	render    *render.Render
	comments  *services.CommentService
	validator *validator.Validate
}

func NewCommentHandler(r *render.Render, comments *services.CommentService, validator *validator.Validate) *CommentHandler {
	return &CommentHandler{render: r, comments: comments, validator: validator}
}

type commentForm struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, meta, err := h.comments.GetComments(r.Context(), mux.Vars(r)["productId"], parsePagination(r))
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, listResponse{Items: comments, Meta: meta})
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form commentForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	comment, err := h.comments.CreateComment(r.Context(), identity.UserID, mux.Vars(r)["productId"], form.Text)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	if err := h.comments.DeleteComment(r.Context(), identity, mux.Vars(r)["commentId"]); err != nil {
		respondError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
