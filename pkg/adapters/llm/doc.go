// Package llm provides ports.Generator implementations for hosted chat models.
//
// Each provider speaks its vendor's REST API directly over net/http. Every
// failure (transport, non-2xx status, an empty answer) is returned as a
// *domain.CollaboratorError naming the provider, so the synthesis pipeline
// can fall back without knowing which vendor was configured.
package llm
