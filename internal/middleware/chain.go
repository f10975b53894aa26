package middleware

import "net/http"

// Chain applies middleware so they execute in the order provided.
//
//	handler := Chain(mux,
//	    RequestLogging,  // executes first
//	    Visitor(...),    // executes second
//	    AdminAuth(...),  // executes third
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
