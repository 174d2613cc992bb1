// Package internal documents the event registration server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, rendering, and routing
// - domain: business logic and domain models
// - storage: database access and repositories (pgx + Postgres)
// - jobs: background workers and queues (River)
// - auth, audit, config, metrics, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
