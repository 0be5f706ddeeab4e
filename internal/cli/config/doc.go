// Package config holds the xlremote-cli configuration file
// (~/.xlremote/cli.yaml): named server profiles and output defaults.
package config
