package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"paygap/core"
	"paygap/service"
)

// searchAnnouncements godoc
//
//	@Summary		Search announcements
//	@Description	Searches announcements with filters, sort, and pagination. Public callers only see published items.
//	@Produce		json
//	@Param			offset	query		int		false	"Result offset"
//	@Param			limit	query		int		false	"Page size"
//	@Param			filters	query		string	false	"Filter clauses as JSON"
//	@Param			sort	query		string	false	"Sort clauses as JSON"
//	@Success		200		{object}	service.AnnouncementSearchResult
//	@Failure		400		{object}	map[string]string
//	@Router			/v1/announcements [get]
func (a *API) searchAnnouncements(w http.ResponseWriter, r *http.Request, claims *Claims) {
	offset, limit, err := pageParams(r)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	result, err := a.announcementSvc.SearchAnnouncements(r.Context(), offset, limit,
		r.URL.Query().Get("filters"), r.URL.Query().Get("sort"), claims.Role)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// createAnnouncement godoc
//
//	@Summary		Create an announcement
//	@Accept			json
//	@Produce		json
//	@Param			body	body		service.AnnouncementInput	true	"Announcement payload"
//	@Success		201		{object}	core.Announcement
//	@Failure		400		{object}	map[string]string
//	@Router			/v1/announcements [post]
func (a *API) createAnnouncement(w http.ResponseWriter, r *http.Request, claims *Claims) {
	var input service.AnnouncementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.respondServiceError(w, core.NewValidationError("Invalid request body"))
		return
	}
	created, err := a.announcementSvc.CreateAnnouncement(r.Context(), &input, claims.Username)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// updateAnnouncement godoc
//
//	@Summary		Update an announcement
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Announcement ID"
//	@Param			body	body		service.AnnouncementInput	true	"Announcement payload"
//	@Success		200		{object}	core.Announcement
//	@Failure		400		{object}	map[string]string
//	@Router			/v1/announcements/{id} [put]
func (a *API) updateAnnouncement(w http.ResponseWriter, r *http.Request, claims *Claims) {
	var input service.AnnouncementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.respondServiceError(w, core.NewValidationError("Invalid request body"))
		return
	}
	updated, err := a.announcementSvc.UpdateAnnouncement(r.Context(), mux.Vars(r)["id"], &input, claims.Username)
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// patchAnnouncements godoc
//
//	@Summary		Bulk announcement status change
//	@Description	Applies a batch of status changes atomically
//	@Accept			json
//	@Produce		json
//	@Param			body	body		[]core.AnnouncementStatusPatch	true	"Status changes"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	map[string]string
//	@Router			/v1/announcements [patch]
func (a *API) patchAnnouncements(w http.ResponseWriter, r *http.Request, claims *Claims) {
	var patches []core.AnnouncementStatusPatch
	if err := json.NewDecoder(r.Body).Decode(&patches); err != nil {
		a.respondServiceError(w, core.NewValidationError("Invalid request body"))
		return
	}
	if err := a.announcementSvc.PatchAnnouncements(r.Context(), patches, claims.Username, claims.Role); err != nil {
		a.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Statuses updated"})
}
