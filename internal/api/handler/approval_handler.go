package handler

import (
	"net/http"

	"ems_backend/internal/app/service"
	"ems_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type ApprovalHandler struct {
	approvalService *service.ApprovalService
}

func NewApprovalHandler(approvalService *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pending-users", h.pendingUsers)
	r.Post("/approve-user/{id}", h.approveUser)
	r.Post("/reject-user/{id}", h.rejectUser)
}

func (h *ApprovalHandler) pendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.approvalService.ListPending(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *ApprovalHandler) approveUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := h.approvalService.Approve(r.Context(), userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "User approved successfully"})
}

func (h *ApprovalHandler) rejectUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := h.approvalService.Reject(r.Context(), userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "User rejected successfully"})
}
