// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package models defines the data structures shared by the feed engine.

Every piece of content, whatever collection it comes from, is represented by a
single ContentItem whose SourceKind field discriminates the collection. The
balancer, the access gate and the engagement ledger therefore never branch on
the concrete source.

Key Components:

  - ContentItem: read-only content as returned by a content store
  - AnnotatedItem: ContentItem plus per-requester flags (liked, downloaded, locked)
  - FeedFilter / FeedPage: query and result of a feed read
  - UserContext / Subscription: requester identity and entitlement
  - EngagementRecord / DownloadEvent: like and download state

Search and ordering helpers (MatchesSearch, RelevanceScore, SortItems) live here
so that every content store and the assembler share one definition.

Usage Example:

	filter := models.FeedFilter{
	    SearchTerm: "wedding",
	    Page:       1,
	    PageSize:   20,
	}
	page, err := assembler.GetPage(ctx, filter, models.AnonymousUser())
*/
package models
