// Package tlsroots loads TLS material for xlremote.
//
//   - watcher.go: the server key pair, reloaded via fsnotify when the files
//     change (for example after mkcert regenerates them)
//   - roots.go: client trust roots, system pool plus an optional CA file
package tlsroots
