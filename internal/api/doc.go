// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package api exposes the feed engine over HTTP using the chi router.

Routes:

	GET    /api/v1/feed                      balanced feed page
	POST   /api/v1/content/{id}/like         like (idempotent)
	DELETE /api/v1/content/{id}/like         unlike (idempotent)
	POST   /api/v1/content/{id}/like/toggle  flip the like state
	POST   /api/v1/content/{id}/download     entitlement check and download record
	GET    /api/v1/me/downloads              requester's download history
	GET    /api/v1/health                    dependency and source breaker status
	GET    /metrics                          Prometheus exposition

Identity is established upstream. The gateway forwards the verified user in
X-User-ID and may forward the subscription in X-Subscription-Active and
X-Subscription-Tier; without those headers the subscription is looked up.
A request without X-User-ID is anonymous.

Every JSON response uses one envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "INVALID_QUERY", "message": "...", "details": {...}},
	  "meta": {"request_id": "...", "timestamp": "...", "pagination": {...}}
	}

Service errors are mapped to status codes in one place (errors.go) so the
mapping stays consistent across handlers.
*/
package api
