// Package main provides the calccell CLI.
package main

import "github.com/mesh-intelligence/calccell/internal/cli"

func main() {
	cli.Execute()
}
