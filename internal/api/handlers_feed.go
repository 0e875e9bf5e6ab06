// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"net/http"
)

// Feed handles GET /api/v1/feed.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseFeedFilter(r.URL.Query())
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}
	user, err := h.identify(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	page, err := h.service.GetFeed(r.Context(), filter, user)
	if err != nil {
		writeServiceError(rw, r, err)
		return
	}

	rw.SuccessWithPagination(page, &PaginationMeta{
		Page:          page.Page,
		PageSize:      page.PageSize,
		Count:         len(page.Items),
		TotalEstimate: page.TotalEstimate,
		HasMore:       int64(page.Page)*int64(page.PageSize) < page.TotalEstimate,
	})
}
