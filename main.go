// Package main is the entry point for the herometrics CLI tool, which builds
// hero-vs-hero advantage matrices from match dumps and backtests staking
// strategies against historical wagers.
package main

import "github.com/podkolzin/go-hero-metrics/cmd"

func main() {
	cmd.Execute()
}
