package middleware

import "net/http"

// Chain wraps h so the given middleware run in the order listed. Wrapping
// happens back to front, which is what makes the listed order the
// execution order.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
