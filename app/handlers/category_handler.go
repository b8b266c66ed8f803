package handlers

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type CategoryHandler struct {
	render     *render.Render
	categories *services.CategoryService
	validator  *validator.Validate
}

func NewCategoryHandler(r *render.Render, categories *services.CategoryService, validator *validator.Validate) *CategoryHandler {
	return &CategoryHandler{render: r, categories: categories, validator: validator}
}

type categoryForm struct {
	Name string `validate:"required,min=2,max=100"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetCategories(r.Context())
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, image, contentType, err := h.parseCategoryForm(r)
	if err != nil {
		respondError(h.render, w, err)
		return
	}

	category, err := h.categories.CreateCategory(r.Context(), name, image, contentType)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, image, contentType, err := h.parseCategoryForm(r)
	if err != nil {
		respondError(h.render, w, err)
		return
	}

	category, err := h.categories.UpdateCategory(r.Context(), mux.Vars(r)["id"], name, image, contentType)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) parseCategoryForm(r *http.Request) (string, io.Reader, string, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return "", nil, "", apperrors.ErrValidation
	}

	form := categoryForm{Name: r.FormValue("name")}
	if err := validate(h.validator, form); err != nil {
		return "", nil, "", err
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return form.Name, nil, "", nil
	}
	if err != nil {
		return "", nil, "", apperrors.ErrValidation
	}
	return form.Name, file, header.Header.Get("Content-Type"), nil
}
