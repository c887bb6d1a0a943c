// Command spotlight is the signal exchange TUI and its debug helpers.
//
// Usage:
//
//	spotlight               Run the TUI
//	spotlight events        JSONL event log viewer
//	spotlight seed          Print the demo data set
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
