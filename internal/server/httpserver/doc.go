// Package httpserver assembles the HTTP/HTTPS server of xlremote.
//
// NewRouter wraps the endpoint handler with the middleware chain:
//
//   - Recover, RequestID, ClientIP, Audit and CORS on every request
//   - Metrics on every routed request
//   - RateLimit and Auth on the POST endpoints that run client code
//
// Server adds timeouts, TLS with certificate hot-reload and graceful
// shutdown on top of net/http.
package httpserver
