// Package service provides the operations behind the HTTP endpoints.
//
// This package contains:
//
//   - BookService: snapshot mutations (hello, capitalize sheet names)
//   - FunctionService: custom function metadata, code and calls
//   - TokenVerifier: Authorization header checks (plaintext or Argon2id)
//   - RateLimiterRegistry: per-client token buckets
//
// Services hold no per-request state and are safe for concurrent use.
// Each BookService call opens its own automation.Book over the posted
// snapshot and releases it before returning.
package service
