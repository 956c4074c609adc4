package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/josephlewis42/plsh/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgPath   string
	colorMode string
	trace     bool

	// exitCode is the status plsh exits with once the command finishes.
	exitCode int
)

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	var configuration *config.Configuration
	if cfgPath == "" {
		configuration = config.Default()
	} else {
		var err error
		configuration, err = config.Load(afero.NewOsFs(), cfgPath)
		if errors.Is(err, fs.ErrNotExist) {
			log.New(cmd.ErrOrStderr(), "[plsh] ", 0).Println("Couldn't load config: did you run init?")
		}
		if err != nil {
			return nil, err
		}
	}

	if trace {
		configuration.Trace = true
	}
	if cmd.Flags().Changed("color") {
		configuration.Color = colorMode
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	setColorMode(configuration.Color, os.Stderr)
	return configuration, nil
}

// setColorMode turns colored output on or off for the whole process.
func setColorMode(mode string, out *os.File) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		color.NoColor = os.Getenv("TERM") == "dumb" || !term.IsTerminal(int(out.Fd()))
	}
}

// rootCmd represents the base command, which runs a script.
var rootCmd = &cobra.Command{
	Use:   "plsh SCRIPT [ARGS...]",
	Short: "Pipeline shell",
	Long: `A small line oriented shell that runs scripts of variable assignments
and pipelines of external programs.

SCRIPT may be - to read the script from standard input. Scripts ending in .gz
are decompressed while they are read.

A script whose name is also a subcommand (check, init, events, ...) has to be
given with a path, e.g. plsh ./check.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		runner := newScriptRunner(cmd, configuration)
		code, err := runner.run(args[0], args[1:])
		if err != nil {
			exitCode = reportError(cmd.ErrOrStderr(), err)
			return nil
		}
		exitCode = code
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "configuration directory, built-in defaults if empty")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", config.ColorAuto, "color diagnostics: always, auto or never")
	rootCmd.PersistentFlags().BoolVarP(&trace, "trace", "x", false, "print each pipeline to stderr before it runs")

	// Everything after SCRIPT belongs to the script.
	rootCmd.Flags().SetInterspersed(false)
}

var errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()

// reportError prints a fatal error and returns the exit status for it.
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "%s %v\n", errorPrefix("plsh:"), err)
	return exitStatusFor(err)
}
