package cmd

import (
	"fmt"

	"github.com/josephlewis42/plsh/core/proc"
	"github.com/spf13/cobra"
)

// checkCmd parses scripts without running them.
var checkCmd = &cobra.Command{
	Use:   "check SCRIPT...",
	Short: "Check scripts for errors without running anything.",
	Long: `Parses each script from start to finish without starting any program.
Pipelines that would capture output see it as empty. With --trace, the
pipelines that would run are listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Nothing runs, so there is nothing to record.
		configuration.EventLog = ""

		failed := 0
		for _, name := range args {
			runner := newScriptRunner(cmd, configuration)
			runner.executor = &proc.DryRun{}
			if _, err := runner.run(name, nil); err != nil {
				reportError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", name, err))
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scripts failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
