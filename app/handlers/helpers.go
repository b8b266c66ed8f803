package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/utils/pagination"
	"github.com/unrolled/render"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listResponse struct {
	Items interface{}     `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// respondError maps a taxonomy error to its status and code. Anything
// outside the taxonomy is an infrastructure failure: logged in full, served
// as an opaque 500.
func respondError(rnd *render.Render, w http.ResponseWriter, err error) {
	if appErr := apperrors.From(err); appErr != nil {
		_ = rnd.JSON(w, appErr.Status, errorBody{Code: appErr.Code, Message: appErr.Message})
		return
	}
	log.Printf("Handler: internal error: %v", err)
	_ = rnd.JSON(w, http.StatusInternalServerError,
		errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ErrValidation
	}
	return nil
}

func validate(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return apperrors.ErrValidation
	}
	return nil
}

func parsePagination(r *http.Request) pagination.Query {
	q := pagination.Query{}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = page
	}
	if pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		q.PageSize = pageSize
	}
	return q.Normalize()
}

func parseUintParam(value string) (uint, error) {
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, apperrors.ErrValidation
	}
	return uint(parsed), nil
}
