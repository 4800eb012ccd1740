package main

import (
	"fmt"
	"os"

	tabagentcmder "github.com/papercomputeco/tabagent/cmd/tabagent"
	"github.com/papercomputeco/tabagent/pkg/agentstream"
)

func main() {
	cmd := tabagentcmder.NewTabagentCmd()
	if err := cmd.Execute(); err != nil {
		// Stream failures were already printed after the partial answer.
		if !agentstream.IsTerminal(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
