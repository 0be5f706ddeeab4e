// Package command defines the xlremote-cli commands on top of urfave/cli/v2.
//
// Every command resolves its connection from the global flags, falling back
// to the active profile of the CLI config file, and prints its result in the
// format chosen with --output.
package command
