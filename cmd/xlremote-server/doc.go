// Command xlremote-server serves the spreadsheet automation endpoints.
//
// Configuration comes from defaults, an optional YAML file, XLREMOTE_*
// environment variables and command-line flags, in increasing priority.
// Changes of log.level in the file are applied without a restart.
//
// Usage:
//
//	xlremote-server [flags]
//	xlremote-server -config /etc/xlremote/server.yaml
//	xlremote-server -cert certs/localhost+2.pem -key certs/localhost+2-key.pem
package main
