package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/availproject/avail-light-go/cmd"
)

func init() {
	rootCmd.AddCommand(
		cmd.NewLight(cmd.WithSubcommands()),
		versionCmd,
	)
	rootCmd.SetHelpCommand(&cobra.Command{})
}

func main() {
	err := run()
	if err != nil {
		os.Exit(1)
	}
}

func run() error {
	return rootCmd.ExecuteContext(context.Background())
}

var rootCmd = &cobra.Command{
	Use: "avail-light [  light  ] [subcommand]",
	Short: `
	    ___                _ __   __    _       __    __
	   /   |_   ______ _(_) /  / /   (_)___ _/ /_  / /_
	  / /| | | / / __ '/ / /  / /   / / __ '/ __ \/ __/
	 / ___ | |/ / /_/ / / /  / /___/ / /_/ / / / / /_
	/_/  |_|___/\__,_/_/_/  /_____/_/\__, /_/ /_/\__/
	                                /____/
	`,
	Args: cobra.NoArgs,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}
