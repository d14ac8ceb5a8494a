package handler

import (
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/Shivanand-hulikatti/meetapp/internal/service"
)

// SubscriptionHandler serves subscribe and the caller's subscription list.
type SubscriptionHandler struct {
	svc *service.SubscriptionService
	log *slog.Logger
}

func NewSubscriptionHandler(svc *service.SubscriptionService, log *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, log: log}
}

// Subscribe handles POST /subscriptions
// The response does not wait for the organizer notification.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), userID, req.MeetupID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// List handles GET /subscriptions
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	subs, err := h.svc.ListActive(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if subs == nil {
		subs = []model.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}
