// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/postcraft/internal/feed"
	"github.com/tomtom215/postcraft/internal/models"
)

// Identity headers set by the upstream gateway.
const (
	HeaderUserID             = "X-User-ID"
	HeaderSubscriptionActive = "X-Subscription-Active"
	HeaderSubscriptionTier   = "X-Subscription-Tier"
)

// maxResourceIDLen bounds {id} path parameters.
const maxResourceIDLen = 128

// parseFeedFilter reads a FeedFilter from query parameters. Absent page and
// page_size take their defaults; value ranges are checked by the assembler.
func parseFeedFilter(q url.Values) (models.FeedFilter, error) {
	filter := models.FeedFilter{
		SearchTerm: q.Get("search"),
		Category:   strings.TrimSpace(q.Get("category")),
		Sort:       models.SortMode(strings.ToLower(strings.TrimSpace(q.Get("sort")))),
		Page:       1,
		PageSize:   models.DefaultPageSize,
	}

	if raw := q.Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			kind, err := models.ParseSourceKind(part)
			if err != nil {
				return filter, &feed.QueryError{Reason: err.Error()}
			}
			filter.ContentTypes = append(filter.ContentTypes, kind)
		}
	}

	var err error
	if filter.PremiumOnly, err = parseBoolParam(q, "premium_only"); err != nil {
		return filter, err
	}
	if filter.Page, err = parseIntParam(q, "page", filter.Page); err != nil {
		return filter, err
	}
	if filter.PageSize, err = parseIntParam(q, "page_size", filter.PageSize); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseIntParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &feed.QueryError{Reason: fmt.Sprintf("%s must be an integer", name)}
	}
	return v, nil
}

func parseBoolParam(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &feed.QueryError{Reason: fmt.Sprintf("%s must be a boolean", name)}
	}
	return v, nil
}

// claimedSubscription reads the forwarded subscription headers. It returns
// nil when the gateway did not send X-Subscription-Active.
func claimedSubscription(r *http.Request) (*models.Subscription, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderSubscriptionActive))
	if raw == "" {
		return nil, nil
	}
	active, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", HeaderSubscriptionActive)
	}
	return &models.Subscription{
		Active: active,
		Tier:   strings.TrimSpace(r.Header.Get(HeaderSubscriptionTier)),
	}, nil
}

// validResourceID rejects empty, oversized or control-character IDs.
func validResourceID(id string) bool {
	if id == "" || len(id) > maxResourceIDLen {
		return false
	}
	for _, c := range id {
		if c < 0x20 || c == 0x7F {
			return false
		}
	}
	return true
}
