// Package versioncmder
package versioncmder

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tabagent/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build time of this tabagent binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), utils.VersionInfo())
			return err
		},
	}
}
