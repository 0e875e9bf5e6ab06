// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package engagement implements the like/download ledger.

Each engagement is keyed by (user, resource, kind). The ledger asks its Store
to create or delete that key in one atomic conditional operation and moves the
resource's popularity counter only when the store reports an actual change.
Duplicate taps, client retries and concurrent identical requests therefore
count once.

# Stores

  - MemoryStore: mutex-guarded maps, for tests and single instances
  - BadgerStore: read-modify-write transactions, retried on ErrConflict
  - RedisStore: per-user sets, SADD/SREM reply counts decide the outcome

# Failure Handling

If the counter update fails after a record changed, the ledger reverts the
record and returns the error, so readers never observe a like without its
count. A store that reports more than one record for a key yields
ErrConflictingEngagementState, which is logged at error level.

# Events

With WithEventSink, every committed change is published as an Event
(engagement.like.created, engagement.like.removed,
engagement.download.recorded).
*/
package engagement
