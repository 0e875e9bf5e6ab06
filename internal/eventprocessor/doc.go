// Postcraft - Marketing Content Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postcraft

// Package eventprocessor carries engagement events from the ledger to their
// consumers over Watermill.
//
// A Bus publishes engagement.Event values as JSON messages on one topic. With
// no NATS URL configured the bus is an in-process GoChannel pub/sub; with one
// it publishes and subscribes over core NATS. Publishing sits behind a circuit
// breaker so a dead broker costs the ledger one fast error instead of a
// connect timeout per request.
//
// A Consumer is a suture service that subscribes to the topic and hands each
// decoded event to a Handler. Malformed payloads are acknowledged and logged
// so they are not redelivered; handler errors nack the message.
//
//	bus, err := eventprocessor.NewBus(eventprocessor.DefaultConfig(""), logger)
//	ledger := engagement.NewLedger(store, counters, logger, engagement.WithEventSink(bus))
//	tree.AddService(eventprocessor.NewConsumer(bus, eventprocessor.LogHandler(logger), logger))
package eventprocessor
