// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package logging provides the process-wide zerolog logger for Postcraft.
//
// Components receive a zerolog.Logger by value and derive their own child
// logger with a "component" field. Code without an injected logger uses the
// package-level helpers:
//
//	logging.Info().Str("path", path).Msg("Content database ready")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Annotation failed")
//
// Ctx adds the request_id and correlation_id stored in the context, so logs
// emitted while serving a request can be joined with the access log.
//
// Two adapters bridge libraries with their own logging interfaces onto the
// same zerolog output: SlogHandler for slog consumers such as sutureslog, and
// WatermillAdapter for the watermill event bus.
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
