/*
Package observability provides tools for monitoring the synthesis pipeline.

It plugs into domain.SynthesisHooks: Prometheus metrics for runs, fallbacks
and dropped edges, structured audit logging, and Combine to attach several
subscribers to one Synthesizer.
*/
package observability
