// Command monoscope indexes a PHP monorepo and answers questions about its
// packages, either as an MCP server over stdio or directly on the command
// line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
