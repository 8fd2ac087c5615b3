// Package main is the entry point for the pokermetrics CLI tool, which parses
// tournament hand-history files and computes partitioned player statistics.
package main

import "github.com/rmgil/go-poker-metrics/cmd"

func main() {
	cmd.Execute()
}
