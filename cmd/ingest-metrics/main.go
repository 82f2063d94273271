// Package main is the entry point for the ingest-metrics application
package main

import "github.com/ethpandaops/ingest-metrics/cmd"

func main() {
	cmd.Execute()
}
