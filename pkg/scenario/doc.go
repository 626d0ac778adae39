/*
Package scenario implements flow management on top of the synthesis and
layout core.

A Manager owns the read-modify-write cycle for an agent's flow: synthesize
from text on first access, merge caller edits with stored positions,
re-layout on request. Operations on the same agent id are serialized by a
ref-counted in-process mutex and, when configured, a distributed lock so
that replicas sharing a store do not lose updates.
*/
package scenario
