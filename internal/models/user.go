// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package models

// Subscription is the requester's entitlement as reported by the billing side.
type Subscription struct {
	Active bool   `json:"active"`
	Tier   string `json:"tier,omitempty"`
}

// UserContext is the verified identity of a requester.
type UserContext struct {
	UserID       string       `json:"user_id,omitempty"`
	Anonymous    bool         `json:"anonymous"`
	Subscription Subscription `json:"subscription"`
}

// AnonymousUser returns the context used for unauthenticated requests.
func AnonymousUser() UserContext {
	return UserContext{Anonymous: true}
}

// HasActiveSubscription reports whether premium content is unlocked.
// Anonymous requesters never have one.
func (u UserContext) HasActiveSubscription() bool {
	return !u.IsAnonymous() && u.Subscription.Active
}

// IsAnonymous reports whether the requester has no verified identity.
func (u UserContext) IsAnonymous() bool {
	return u.Anonymous || u.UserID == ""
}
