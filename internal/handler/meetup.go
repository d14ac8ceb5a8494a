package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
	"github.com/Shivanand-hulikatti/meetapp/internal/service"
	"github.com/go-chi/chi/v5"
)

// MeetupHandler serves the meetup lifecycle endpoints.
type MeetupHandler struct {
	svc *service.MeetupService
	log *slog.Logger
}

func NewMeetupHandler(svc *service.MeetupService, log *slog.Logger) *MeetupHandler {
	return &MeetupHandler{svc: svc, log: log}
}

// List handles GET /meetups?date=YYYY-MM-DD&page=N
func (h *MeetupHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page must be a number")
			return
		}
		page = n
	}

	meetups, err := h.svc.ListByDay(r.Context(), r.URL.Query().Get("date"), page)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if meetups == nil {
		meetups = []model.Meetup{}
	}
	writeJSON(w, http.StatusOK, meetups)
}

// Create handles POST /meetups
func (h *MeetupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.MeetupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	m, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Get handles GET /meetups/{id}
func (h *MeetupHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Update handles PUT /meetups/{id}
func (h *MeetupHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req model.MeetupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	m, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Cancel handles DELETE /meetups/{id}
func (h *MeetupHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Cancel(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "meetup canceled"})
}

// Close handles POST /meetups/{id}/close
func (h *MeetupHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Close(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Organizing handles GET /organizing
// Returns every meetup the caller organizes.
func (h *MeetupHandler) Organizing(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	meetups, err := h.svc.ListByOrganizer(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if meetups == nil {
		meetups = []model.Meetup{}
	}
	writeJSON(w, http.StatusOK, meetups)
}
