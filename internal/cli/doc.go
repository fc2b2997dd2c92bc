// Package cli holds the terminal styling and report rendering of the
// slowverb command.
package cli
