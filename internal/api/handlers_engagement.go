// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/postcraft/internal/feed"
	"github.com/tomtom215/postcraft/internal/models"
)

// engagementRequest resolves the requester and {id} shared by the
// engagement routes. ok is false when a response was already written.
func (h *Handler) engagementRequest(rw *ResponseWriter, r *http.Request) (user models.UserContext, resourceID string, ok bool) {
	resourceID = chi.URLParam(r, "id")
	if !validResourceID(resourceID) {
		rw.BadRequest("Invalid content id")
		return user, "", false
	}
	user, err := h.identify(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return user, "", false
	}
	return user, resourceID, true
}

// Like handles POST /api/v1/content/{id}/like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user, id, ok := h.engagementRequest(rw, r)
	if !ok {
		return
	}
	res, err := h.service.Like(r.Context(), user, id)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.Success(res)
}

// Unlike handles DELETE /api/v1/content/{id}/like.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user, id, ok := h.engagementRequest(rw, r)
	if !ok {
		return
	}
	res, err := h.service.Unlike(r.Context(), user, id)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.Success(res)
}

// ToggleLike handles POST /api/v1/content/{id}/like/toggle.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user, id, ok := h.engagementRequest(rw, r)
	if !ok {
		return
	}
	res, err := h.service.ToggleLike(r.Context(), user, id)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	rw.Success(res)
}

// Download handles POST /api/v1/content/{id}/download. A locked premium
// item is refused with 403 and nothing is recorded.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user, id, ok := h.engagementRequest(rw, r)
	if !ok {
		return
	}
	outcome, err := h.service.RecordDownload(r.Context(), user, id)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	if !outcome.DownloadURLEligible {
		writeServiceError(rw, r, feed.ErrPremiumLocked)
		return
	}
	rw.Success(outcome)
}

// DownloadHistory handles GET /api/v1/me/downloads.
func (h *Handler) DownloadHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := h.config.HistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			rw.BadRequest("limit must be a positive integer")
			return
		}
		if v < limit {
			limit = v
		}
	}

	user, err := h.identify(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	events, err := h.service.DownloadHistory(r.Context(), user, limit)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	if events == nil {
		events = []models.DownloadEvent{}
	}
	rw.Success(events)
}
