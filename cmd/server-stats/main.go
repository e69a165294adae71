// Package main provides the entry point for the server-stats reporter.
package main

import "os"

func main() {
	os.Exit(Execute())
}
