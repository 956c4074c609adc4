package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/josephlewis42/plsh/core/config"
	"github.com/josephlewis42/plsh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the script event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report logger.Report
		return summarizeEvents(cmd, report.Update, &report)
	},
}

var failuresCommand = &cobra.Command{
	Use:   "failures",
	Short: "Show unknown commands and script errors.",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := logger.NewFailureReport()
		return summarizeEvents(cmd, report.Update, report)
	},
}

var sessionsCommand = &cobra.Command{
	Use:   "sessions",
	Short: "Show what each run of a script did.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report logger.SessionReport
		return summarizeEvents(cmd, report.Update, &report)
	},
}

// summarizeEvents feeds the event log to update and prints the report as YAML.
func summarizeEvents(cmd *cobra.Command, update func(*logger.LogEntry), report interface{}) error {
	cmd.SilenceUsage = true

	dir := cfgPath
	if dir == "" {
		dir = "."
	}
	configuration, err := config.Load(afero.NewOsFs(), dir)
	if err != nil {
		return fmt.Errorf("loading config from %q: %w", dir, err)
	}

	fd, err := configuration.ReadEventLog()
	if errors.Is(err, config.ErrNoEventLog) {
		return fmt.Errorf("%w: set event_log in %s", err, config.ConfigurationName)
	}
	if err != nil {
		return err
	}
	defer fd.Close()

	return writeReport(cmd.OutOrStdout(), fd, update, report)
}

func writeReport(w io.Writer, log io.Reader, update func(*logger.LogEntry), report interface{}) error {
	if err := logger.ReadJSONLinesLog(log, update); err != nil {
		return err
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(failuresCommand)
	eventsCmd.AddCommand(sessionsCommand)
}
