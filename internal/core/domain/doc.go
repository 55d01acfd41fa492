// Package domain contains the core business entities and value types for
// the invoice harvester: sellers, tax providers, invoices, raw portal
// records, processing outcomes, and the read-only operator profile.
//
// The package has no dependencies on adapters or external services.
// All persistence and retrieval behaviour lives behind ports.
package domain
