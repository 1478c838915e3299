// Package middlewares tiene la cadena HTTP explícita del gateway.
package middlewares

import "net/http"

// Middleware envuelve un handler.
type Middleware func(http.Handler) http.Handler

// Chain aplica los middlewares en orden: el primero es el más externo.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
