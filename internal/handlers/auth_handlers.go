package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/session"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	AuthService AuthService
	Cookies     auth.Cookies
}

func NewAuthHandler(authService AuthService, cookies auth.Cookies) *AuthHandler {
	return &AuthHandler{
		AuthService: authService,
		Cookies:     cookies,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responseWithError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		logger.Warn("HTTP: unreadable login body", zap.String("client_ip", r.RemoteAddr))
		handleError(w, r, service.NewMissingFields("email", "password"))
		return
	}

	sess, err := h.AuthService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}

	h.Cookies.Write(w, r, sess.Token)
	responseWithBody(w, http.StatusOK, dto.FromSession(sess))
}

// Logout always clears the cookie, whether or not a session was attached.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := h.Cookies.Read(r); ok {
		if err := h.AuthService.Logout(r.Context(), token); err != nil {
			handleError(w, r, err)
			return
		}
	}

	h.Cookies.Clear(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	var resp dto.MeResponse
	if sess, ok := auth.FromContext(r.Context()); ok {
		u := dto.FromSession(sess)
		resp.User = &u
	}
	responseWithBody(w, http.StatusOK, resp)
}
