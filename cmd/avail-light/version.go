package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/availproject/avail-light-go/nodebuilder/node"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show information about the current binary build",
	Args:  cobra.NoArgs,
	Run:   printBuildInfo,
}

func printBuildInfo(c *cobra.Command, _ []string) {
	info := node.GetBuildInfo()
	out := c.OutOrStdout()
	fmt.Fprintf(out, "Semantic version: %s\n", info.SemanticVersion)
	fmt.Fprintf(out, "Commit: %s\n", info.LastCommit)
	fmt.Fprintf(out, "Build Date: %s\n", info.BuildTime)
	fmt.Fprintf(out, "System version: %s\n", info.SystemVersion)
	fmt.Fprintf(out, "Golang version: %s\n", info.GolangVersion)
}
