// Package services implements the driving port interfaces: record
// ingestion, the download orchestrator, flat-file reconciliation, and
// read-only queries. Services contain the core business logic and
// orchestrate calls to driven ports (adapters).
package services
