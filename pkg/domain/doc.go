/*
Package domain contains the core graph model for plotline.

It defines the entities produced by scenario synthesis and consumed by the
layout engine and the storage adapters. This package is kept pure and free of
I/O, following Hexagonal Architecture principles.

# Key Entities

  - Node: A single beat of the scenario (start, message, decision, action, end).
  - Edge: A directed transition between two nodes.
  - Flow: The ordered node and edge lists that make up a scenario graph.
  - FlowDiff: What changed between two versions of a Flow.
*/
package domain
