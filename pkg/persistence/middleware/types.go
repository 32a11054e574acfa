package middleware

import "github.com/aretw0/pipedeck/pkg/ports"

// Middleware allows wrapping an OutcomeStore to add behavior.
type Middleware func(ports.OutcomeStore) ports.OutcomeStore

// Chain wraps store so that the first middleware sees calls first.
func Chain(store ports.OutcomeStore, mws ...Middleware) ports.OutcomeStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
