package handler

import (
	"encoding/json"
	"net/http"

	"ems_backend/internal/app/service"
	"ems_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	registrationService *service.RegistrationService
	authService         *service.AuthService
}

func NewAuthHandler(registrationService *service.RegistrationService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{registrationService: registrationService, authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup/admin", h.signupAdmin)
	r.Post("/signup/officer", h.signupOfficer)
	r.Post("/login", h.login)
}

func (h *AuthHandler) signupAdmin(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	message, err := h.registrationService.RegisterAdmin(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.MessageResponse{Message: message})
}

func (h *AuthHandler) signupOfficer(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	message, err := h.registrationService.RegisterOfficer(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.MessageResponse{Message: message})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
