// Package main is the entry point for the dotanarrative CLI tool, which
// compacts Dota 2 match telemetry into readable match narratives.
package main

import "github.com/pable/go-dota-narrative/cmd"

func main() {
	cmd.Execute()
}
