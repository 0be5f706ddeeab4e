// Package connection is the HTTP client xlremote-cli uses to talk to an
// xlremote server.
//
// Bearer tokens are sent in the Authorization header. Failed requests are
// returned as *APIError, which carries the error envelope for JSON errors
// and the plain-text body for automation errors.
package connection
