// Package driving defines the inbound ports of the harvester core:
// ingestion, download orchestration, querying, and reconciliation.
// The CLI adapter drives the core exclusively through these interfaces.
package driving
