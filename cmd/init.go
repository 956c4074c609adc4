package cmd

import (
	"log"

	"github.com/josephlewis42/plsh/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// initCmd initializes the plsh configuration
var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Initialize a plsh configuration directory.",
	Long: `Writes the default config.yaml to DIR, the --config directory or the
current directory, in that order of preference.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		dir := "."
		switch {
		case len(args) == 1:
			dir = args[0]
		case cfgPath != "":
			dir = cfgPath
		}

		return config.Initialize(afero.NewOsFs(), dir, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
