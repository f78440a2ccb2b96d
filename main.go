// main is the entry point for the kpiscope CLI.
package main

import (
	"github.com/autoops/kpiscope/cmd"
	"github.com/autoops/kpiscope/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
