// uciwire bridges UCI chess engines to WebSocket clients.
package main

import (
	"fmt"
	"os"

	"github.com/uciwire/uciwire/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
