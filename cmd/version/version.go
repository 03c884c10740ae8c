// Package versioncmder
package versioncmder

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/aviary/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build time of the aviary CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"Version: %s\nSha: %s\nBuilt at: %s\nGo: %s\n",
				utils.Version, utils.Sha, utils.Buildtime, runtime.Version(),
			)
			return err
		},
	}
}
