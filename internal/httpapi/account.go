package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/urbanelite/storefront/internal/domain/account"
)

type registerRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	a, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			respondMessage(w, http.StatusConflict, false, "email already registered")
			return
		}
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(a.ID, a.Email, scopeCustomer)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setAuthCookie(w, token)
	respondMessage(w, http.StatusCreated, true, "account created")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	a, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, false, "invalid email or password")
			return
		}
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(a.ID, a.Email, scopeCustomer)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setAuthCookie(w, token)
	respondMessage(w, http.StatusOK, true, "logged in")
}

func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	h.clearAuthCookie(w)
	respondMessage(w, http.StatusOK, true, "logged out")
}

type profileResponse struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
	Contact  string `json:"contact"`
	Address  string `json:"address"`
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	a, err := h.accountRepo.GetByID(r.Context(), accountID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profileResponse{
		Email:    a.Email,
		FullName: a.FullName,
		Contact:  a.Contact,
		Address:  a.Address,
	})
}

type updateProfileRequest struct {
	Contact string `json:"contact"`
	Address string `json:"address"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.accountRepo.UpdateProfile(r.Context(), accountID(r), req.Contact, req.Address); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "profile updated")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	err := h.accounts.ChangePassword(r.Context(), accountID(r), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, false, "current password is incorrect")
			return
		}
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "password changed")
}
