package handler

import (
	"errors"
	"net/http"

	"github.com/go-auth-nosql/internal/application/recovery"
	"github.com/go-auth-nosql/internal/application/user"
	"github.com/go-auth-nosql/internal/application/verification"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles sign-up, sign-in, email verification and password reset.
type UserHandler struct {
	accounts     user.Service
	verification verification.Service
	recovery     recovery.Service
}

func NewUserHandler(accounts user.Service, verification verification.Service, recovery recovery.Service) *UserHandler {
	return &UserHandler{accounts: accounts, verification: verification, recovery: recovery}
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.accounts.SignUp(r.Context(), req)
	if err != nil {
		if u != nil && errors.Is(err, domain.ErrDependency) {
			writeError(w, http.StatusInternalServerError, "verification email failed")
			return
		}
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, Envelope{Status: StatusPending, Message: "verification email sent", Data: u})
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, bearer, err := h.accounts.SignIn(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "signin successful", SignInData{User: u, Bearer: bearer})
}

// Verify consumes the token from an emailed link and redirects to the result page.
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	err := h.verification.Consume(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "uniqueString"))
	msg := ""
	if err != nil {
		msg = publicMessage(err)
	}
	http.Redirect(w, r, verifiedURL(msg), http.StatusFound)
}

func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.recovery.Issue(r.Context(), req.Email, req.RedirectURL); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, Envelope{Status: StatusPending, Message: "password reset email sent"})
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.recovery.Consume(r.Context(), req.UserID, req.ResetString, req.NewPassword); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "password has been reset successfully", nil)
}
