// Package domain contains the core entities and payload rules for hubstore.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only the rules that turn a caller's batch into a wire payload.
//
// # Entities
//
//   - [ProcessedAgentData]: A processed agent reading with its road state
//   - [Payload]: A batch that is already shaped as the wire payload
//   - [RawItem]: A single pre-encoded JSON record
//
// # Batches
//
// A batch is either a [Payload] (sent as-is) or an ordered sequence of
// records. Records implementing [Serializable] are encoded and decoded back
// into structured values; every other record passes through unchanged.
// [BuildPayload] resolves the variant with a type switch at the call boundary.
package domain
