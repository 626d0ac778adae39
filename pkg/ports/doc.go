/*
Package ports defines the driven ports (interfaces) for plotline.

These interfaces decouple the synthesis and layout core from external
implementations, allowing the same pipeline to run against any language
model vendor, storage backend or scenario library.

# Key Interfaces

  - Generator: the text-generation collaborator ("given text, return text").
  - FlowStore: persists and loads a Flow keyed by agent id.
  - ScenarioSource: lists scenario texts (e.g. a Loam vault of markdown files).
  - DistributedLocker: coordinates concurrent updates across replicas.
*/
package ports
