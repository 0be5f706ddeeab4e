// Package buildinfo exposes build information of the xlremote binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/xlremote-go/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
