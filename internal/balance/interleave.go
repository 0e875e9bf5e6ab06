// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

package balance

import (
	"sort"

	"github.com/tomtom215/postcraft/internal/models"
)

// Pool is an ordered list of candidates for one category.
type Pool struct {
	// Key uniquely identifies the pool within one call.
	Key string
	// Name and ID fix the pool's position in the round-robin.
	Name  string
	ID    string
	Items []models.ContentItem
}

// Interleave returns items [offset, offset+count) of the canonical balanced
// order of pools. Pools are not modified.
func Interleave(pools []Pool, offset, count int) []models.ContentItem {
	if count <= 0 || offset < 0 {
		return nil
	}

	ordered := orderPools(pools)
	if len(ordered) == 0 {
		return nil
	}

	round, skip, ok := locate(ordered, offset)
	if !ok {
		return nil
	}

	out := make([]models.ContentItem, 0, count)
	for len(out) < count {
		emitted := false
		for i := range ordered {
			if round >= len(ordered[i].Items) {
				continue
			}
			emitted = true
			if skip > 0 {
				skip--
				continue
			}
			out = append(out, ordered[i].Items[round])
			if len(out) == count {
				break
			}
		}
		if !emitted {
			break
		}
		round++
	}
	return out
}

// Merge returns the complete balanced order of pools.
func Merge(pools []Pool) []models.ContentItem {
	total := 0
	for i := range pools {
		total += len(pools[i].Items)
	}
	return Interleave(pools, 0, total)
}

// Categories returns the distinct category names in items, sorted.
func Categories(items []models.ContentItem) []string {
	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0)
	for i := range items {
		name := items[i].Category
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// orderPools drops empty pools and sorts the rest into round-robin order.
func orderPools(pools []Pool) []Pool {
	ordered := make([]Pool, 0, len(pools))
	for i := range pools {
		if len(pools[i].Items) > 0 {
			ordered = append(ordered, pools[i])
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Key < b.Key
	})
	return ordered
}

// locate finds the round containing position offset and how many live pools
// of that round precede it. ok is false when offset is past the end.
func locate(ordered []Pool, offset int) (round, skip int, ok bool) {
	lengths := make([]int, len(ordered))
	for i := range ordered {
		lengths[i] = len(ordered[i].Items)
	}
	sort.Ints(lengths)

	pos := 0
	for idx := 0; idx < len(lengths); {
		// Pools with length > round are live; lengths[idx:] are exactly those.
		live := len(lengths) - idx
		next := lengths[idx]
		block := (next - round) * live
		if offset-pos < block {
			full := (offset - pos) / live
			return round + full, offset - pos - full*live, true
		}
		pos += block
		round = next
		for idx < len(lengths) && lengths[idx] <= round {
			idx++
		}
	}
	return 0, 0, false
}
