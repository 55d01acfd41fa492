// Package driven defines the outbound ports of the harvester core: the
// entity store, the paginated record fetcher, the per-provider document
// retrievers, the artifact store, and the document validator.
//
// Adapters implement these interfaces; the core services depend only on
// the interfaces.
package driven
