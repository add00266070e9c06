// Command hackitctl is the operator CLI for a hackit deployment.
package main

import (
	"fmt"
	"os"

	"hackit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
