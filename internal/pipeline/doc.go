// Package pipeline wires the naming engine to a notes directory: it
// discovers files, reports their health, and plans, previews, applies,
// retries and rolls back refactors. Commands in cmd/axon are thin wrappers
// around an [Engine].
package pipeline
