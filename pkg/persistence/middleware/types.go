// Package middleware wraps a ports.FlowStore with at-rest transformations.
package middleware

import "github.com/aretw0/plotline/pkg/ports"

// Middleware allows wrapping a FlowStore to add behavior.
type Middleware func(ports.FlowStore) ports.FlowStore

// Chain applies middlewares so that the first one sees calls first.
func Chain(store ports.FlowStore, mws ...Middleware) ports.FlowStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
