// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run real backing services for tests
// built with the integration tag:
//
//	go test -tags integration ./internal/engagement/...
//
// # Redis Container
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//
//	    client := goredis.NewClient(&goredis.Options{Addr: redis.Addr})
//	    store := engagement.NewRedisStore(client, "it", 0)
//	    // ...
//	}
//
// Unit tests use miniredis instead; the container run checks behaviour that
// depends on a real server (cluster hash tags, MULTI semantics).
package testinfra
