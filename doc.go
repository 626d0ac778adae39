/*
Package plotline turns an unstructured natural-language scenario into a
directed graph of typed nodes and edges, ready to be drawn on a canvas.

A text-generation collaborator (any ports.Generator) is asked to describe
the scenario as JSON. Its answer is extracted from the surrounding prose,
repaired where possible (dangling edges are dropped, missing ids and types
are filled in) and returned as a domain.Flow. When the answer is unusable
the result is a single-node fallback flow carrying the scenario text, so
synthesis never fails.

# Usage

	gen := ports.GeneratorFunc(func(ctx context.Context, user, system string) (string, error) {
		return callYourModel(ctx, system, user)
	})

	flow, diag := plotline.Synthesize(ctx, "1. greet\n2. ask name\n3. end", gen)
	if diag.Fallback {
		log.Printf("fallback at %s: %v", diag.Stage, diag.Err)
	}

	flow, err := plotline.Layout(flow)

# Layout

Layout places nodes by level: the longest path from a node without incoming
edges. Nodes of a level are spread horizontally around a fixed center, one
row per level. Edges that close a cycle never push their target down.

# Storage

scenario.Manager keeps one flow per agent id in a ports.FlowStore (memory,
file or Redis adapters), merges positions on update and serializes writes
per agent, optionally across replicas with a Redis lock.
*/
package plotline
