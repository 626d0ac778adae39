// Package schema turns untrusted, model-authored JSON into a well-formed
// domain.Flow.
//
// Normalize accepts the candidate text produced by package extract,
// NormalizeFlow accepts an already-decoded Flow (e.g. a manual edit). Both
// apply the same policy: structural problems with nodes fail the whole
// document, problems with edges drop the edge and record a Warning.
//
// Node payloads are checked against a small type system:
//
//	PayloadSchema("decision") // {"condition": string, "label": string, "options": [string]}
//
// Payload mismatches are reported as warnings and never reject a flow, since
// the data mapping is open by design.
package schema
