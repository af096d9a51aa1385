// cmd/tripgen/main.go
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, openRuntime).Execute(); err != nil {
		os.Exit(1)
	}
}
