// Command starksign derives STARK public keys and signs transaction digests.
package main

import (
	"os"
)

func main() {
	// Cobra prints the error string on failure; usage output is silenced, so
	// only the exit status is left to set.
	if newRootCmd(os.Stdout).Execute() != nil {
		os.Exit(1)
	}
}
