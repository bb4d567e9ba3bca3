// Package cli implements the uciwire command-line interface.
package cli
