// Package config defines the configuration of xlremote-server.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (addresses, files, enums)
//   - sanitize.go: masking of auth tokens for logs
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and XLREMOTE_ environment variables.
package config
