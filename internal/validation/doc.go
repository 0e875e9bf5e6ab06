// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package validation wraps go-playground/validator with a shared instance and
readable error messages.

Structs declare their constraints with `validate` tags:

	type FeedFilter struct {
	    Page     int `json:"page" validate:"min=1"`
	    PageSize int `json:"page_size" validate:"min=1,max=100"`
	}

	if verr := validation.ValidateStruct(filter); verr != nil {
	    return fmt.Errorf("%w: %s", feed.ErrInvalidQuery, verr)
	}

Field names in messages follow the json tag (or koanf tag for configuration
structs), so errors read the same as the request parameters.
*/
package validation
