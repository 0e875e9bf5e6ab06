// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

/*
Package supervisor runs the long-lived parts of the engine under a suture v4
supervisor tree.

The tree has two layers so a crash loop in one cannot starve the other:

  - messaging: the engagement event consumer
  - api: the HTTP server

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(consumer)
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
