package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/middlewares"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

const maxImageSize = 10 << 20

type ProductHandler struct {
	render    *render.Render
	products  *services.ProductService
	validator *validator.Validate
}

func NewProductHandler(r *render.Render, products *services.ProductService, validator *validator.Validate) *ProductHandler {
	return &ProductHandler{render: r, products: products, validator: validator}
}

type productForm struct {
	Title       string `validate:"required,min=2,max=200"`
	Description string `validate:"max=5000"`
	Price       string `validate:"required"`
	CategoryID  string `validate:"omitempty,uuid4"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.ProductFilter{
		Search:    query.Get("search"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	}
	if raw := query.Get("priceMin"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(h.render, w, apperrors.ErrValidation)
			return
		}
		filter.PriceMin = &price
	}
	if raw := query.Get("priceMax"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(h.render, w, apperrors.ErrValidation)
			return
		}
		filter.PriceMax = &price
	}
	if raw := query.Get("categories"); raw != "" {
		filter.CategorySlugs = strings.Split(raw, ",")
	}

	// Archived products are only listable by admins.
	if query.Get("showRemoved") == "true" {
		identity, ok := middlewares.IdentityFrom(r.Context())
		if ok && identity.IsAdmin() {
			filter.ShowRemoved = true
		}
	}

	products, meta, err := h.products.GetProducts(r.Context(), filter, parsePagination(r))
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, listResponse{Items: products, Meta: meta})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if identity, ok := middlewares.IdentityFrom(r.Context()); ok {
		userID = identity.UserID
	}

	view, err := h.products.GetProduct(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, view)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, image, contentType, err := h.parseProductForm(r)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	if image != nil {
		defer image.Close()
	}

	var reader io.Reader
	if image != nil {
		reader = image
	}
	product, err := h.products.CreateProduct(r.Context(), input, reader, contentType)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, image, contentType, err := h.parseProductForm(r)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	if image != nil {
		defer image.Close()
	}

	var reader io.Reader
	if image != nil {
		reader = image
	}
	product, err := h.products.UpdateProduct(r.Context(), mux.Vars(r)["id"], input, reader, contentType)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Archive(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.ArchiveProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.UnarchiveProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) parseProductForm(r *http.Request) (services.ProductInput, multipart.File, string, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return services.ProductInput{}, nil, "", apperrors.ErrValidation
	}

	form := productForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		CategoryID:  r.FormValue("categoryId"),
	}
	if err := validate(h.validator, form); err != nil {
		return services.ProductInput{}, nil, "", err
	}

	price, err := decimal.NewFromString(form.Price)
	if err != nil || price.IsNegative() {
		return services.ProductInput{}, nil, "", apperrors.ErrValidation
	}

	input := services.ProductInput{
		Title:       form.Title,
		Description: form.Description,
		Price:       price,
		CategoryID:  form.CategoryID,
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return input, nil, "", nil
	}
	if err != nil {
		return services.ProductInput{}, nil, "", apperrors.ErrValidation
	}
	return input, file, header.Header.Get("Content-Type"), nil
}
