// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package feed

import (
	"strconv"

	"github.com/tomtom215/postcraft/internal/balance"
	"github.com/tomtom215/postcraft/internal/models"
)

// categoryGroup collects one category's candidates per source kind.
type categoryGroup struct {
	key    string
	name   string
	id     string
	byKind map[models.SourceKind][]models.ContentItem
}

// buildPools groups per-source results into balancer pools.
//
// sources must already be sorted and ordered canonically by kind. With
// foldKind the kind is part of the group key. Inside a group that spans
// several kinds the kinds are round-robined in canonical order. Each pool is
// cut to limit items since no window ending at limit needs more from one
// category.
func buildPools(sources [][]models.ContentItem, foldKind bool, limit int) []balance.Pool {
	groups := make(map[string]*categoryGroup)
	var order []string

	for _, items := range sources {
		for i := range items {
			item := items[i]
			key := item.CategoryKey()
			if foldKind {
				key = item.SourceKind.String() + "|" + key
			}
			g, ok := groups[key]
			if !ok {
				g = &categoryGroup{
					key:    key,
					name:   item.Category,
					id:     item.CategoryID,
					byKind: make(map[models.SourceKind][]models.ContentItem),
				}
				groups[key] = g
				order = append(order, key)
			}
			if item.Category < g.name {
				g.name = item.Category
			}
			g.byKind[item.SourceKind] = append(g.byKind[item.SourceKind], item)
		}
	}

	pools := make([]balance.Pool, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		items := g.merged()
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		pools = append(pools, balance.Pool{Key: g.key, Name: g.name, ID: g.id, Items: items})
	}
	return pools
}

func (g *categoryGroup) merged() []models.ContentItem {
	if len(g.byKind) == 1 {
		for _, items := range g.byKind {
			return items
		}
	}
	sub := make([]balance.Pool, 0, len(g.byKind))
	for _, kind := range models.AllSourceKinds {
		if items := g.byKind[kind]; len(items) > 0 {
			// Single digit keys sort in canonical kind order.
			sub = append(sub, balance.Pool{Key: strconv.Itoa(int(kind)), Items: items})
		}
	}
	return balance.Merge(sub)
}
