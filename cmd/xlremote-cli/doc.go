// Command xlremote-cli talks to an xlremote server: it checks health, posts
// snapshots of local workbooks to the automation endpoints and replays the
// returned actions, and inspects or calls custom functions.
//
// Usage:
//
//	xlremote-cli --server https://localhost:8000 run hello book.xlsx --in-place
package main
