// Package tabagentcmder
package tabagentcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/tabagent/cmd/tabagent/ask"
	chatcmder "github.com/papercomputeco/tabagent/cmd/tabagent/chat"
	configcmder "github.com/papercomputeco/tabagent/cmd/tabagent/config"
	historycmder "github.com/papercomputeco/tabagent/cmd/tabagent/history"
	mockcmder "github.com/papercomputeco/tabagent/cmd/tabagent/mock"
	versioncmder "github.com/papercomputeco/tabagent/cmd/version"
)

const tabagentLongDesc string = `tabagent talks to a local LangGraph agent server and streams its answers
to your terminal.

Get started using:
  tabagent ask "your question"    Ask a single question
  tabagent chat                   Start an interactive session
  tabagent history list           Show recorded runs
  tabagent mock                   Run a fake agent server for local testing`

const tabagentShortDesc string = "tabagent - terminal client for LangGraph agents"

func NewTabagentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabagent",
		Short: tabagentShortDesc,
		Long:  tabagentLongDesc,

		// main reports errors itself so stream failures already shown
		// inline are not printed twice.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .tabagent/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(mockcmder.NewMockCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
