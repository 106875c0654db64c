// Command nexus compiles an OpenAPI 3.1 document into a typed
// TypeScript client package.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
