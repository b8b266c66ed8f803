package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ostapdev/go-shop/app/middlewares"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render    *render.Render
	auth      *services.AuthService
	validator *validator.Validate
}

func NewAuthHandler(r *render.Render, auth *services.AuthService, validator *validator.Validate) *AuthHandler {
	return &AuthHandler{render: r, auth: auth, validator: validator}
}

type registerForm struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// googleForm carries the profile fields of an id token already verified by
// the OAuth gateway in front of this API.
type googleForm struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

type profileForm struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,e164"`
}

type passwordForm struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	user, token, err := h.auth.Register(r.Context(), form.Name, form.Email, form.Phone, form.Password)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *AuthHandler) LoginGoogle(w http.ResponseWriter, r *http.Request) {
	var form googleForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	user, token, err := h.auth.LoginGoogle(r.Context(), form.Email, form.Name)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	user, err := h.auth.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form profileForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), identity.UserID, form.Name, form.Email, form.Phone)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFrom(r.Context())

	var form passwordForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := validate(h.validator, form); err != nil {
		respondError(h.render, w, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), identity.UserID, form.OldPassword, form.NewPassword); err != nil {
		respondError(h.render, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
