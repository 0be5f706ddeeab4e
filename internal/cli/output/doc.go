// Package output renders xlremote-cli results as json, yaml or a plain
// text table.
package output
