package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/v6sh/core"
	"github.com/josephlewis42/v6sh/core/config"
	"github.com/josephlewis42/v6sh/core/interp"
	"github.com/josephlewis42/v6sh/core/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// EnvConfig and EnvColor hand the configuration directory and color choice
	// down to subshells. Flags take precedence over them.
	EnvConfig = "V6SH_CONFIG"
	EnvColor  = "V6SH_COLOR"
)

var (
	cfgPath   string
	command   string
	xtrace    bool
	stage     core.Stage
	colorMode string

	// exitStatus is set by the root command, Execute returns it.
	exitStatus int
)

func loadConfig() (*config.Configuration, error) {
	return config.Load(afero.NewOsFs(), cfgPath)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "v6sh [flags] [script]",
	Short: "A small v6-style command shell",
	Long: `v6sh runs commands made of words, pipes (|), sequences (;), background
jobs (&), redirections (<, >, >>) and parenthesized subshells.

Commands come from -c, a script file, or standard input. A terminal on
standard input gets an interactive prompt.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		if dir, ok := os.LookupEnv(EnvConfig); ok && !flags.Changed("config") {
			cfgPath = dir
		}
		if mode, ok := os.LookupEnv(EnvColor); ok && !flags.Changed("color") {
			colorMode = mode
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		appLogger := log.New(cmd.ErrOrStderr(), "[v6sh] ", 0)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sh, closeEvents, err := newShell(cmd, cfg, appLogger)
		if err != nil {
			return err
		}
		defer closeEvents()

		ctx := context.Background()
		switch {
		case cmd.Flags().Changed("command"):
			// Newlines separate commands the same way they do in scripts.
			exitStatus = sh.RunScript(ctx, strings.NewReader(command))

		case len(args) == 1:
			fd, err := os.Open(args[0])
			if err != nil {
				exitStatus = interp.StatusNotFound
				return err
			}
			defer fd.Close()
			exitStatus = sh.RunScript(ctx, fd)

		case isTerminal(cmd.InOrStdin()):
			// The foreground command gets the interrupt, the shell keeps running.
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)
			go func() {
				for range interrupts {
				}
			}()

			historyPath, err := cfg.HistoryPath()
			if err != nil {
				return err
			}
			exitStatus, err = sh.RunInteractive(ctx, &readline.Config{
				HistoryFile:  historyPath,
				HistoryLimit: cfg.HistoryLimit,
				Stdin:        readline.NewCancelableStdin(cmd.InOrStdin()),
				Stdout:       cmd.OutOrStdout(),
				Stderr:       cmd.ErrOrStderr(),
			})
			return err

		default:
			exitStatus = sh.RunScript(ctx, cmd.InOrStdin())
		}
		return nil
	},
}

func newShell(cmd *cobra.Command, cfg *config.Configuration, appLogger *log.Logger) (*core.Shell, func(), error) {
	setColor(cfg)

	events := logger.NewNopLogger()
	closeEvents := func() {}
	switch fd, err := cfg.OpenEventLog(); {
	case err != nil:
		appLogger.Printf("Couldn't open event log: %v", err)
	case fd != nil:
		events = logger.NewJsonLinesLogRecorder(fd)
		closeEvents = func() { fd.Close() }
	}

	it := interp.New(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	it.Verbose = xtrace || cfg.Trace
	it.TraceColor = color.New(color.FgCyan)
	it.ErrColor = color.New(color.FgRed)

	// Subshells log to the same place and color the same way.
	if dir, err := filepath.Abs(cfg.Dir()); err == nil {
		it.Env.Setenv(EnvConfig, dir)
	}
	if color.NoColor {
		it.Env.Setenv(EnvColor, config.ColorNever)
	} else {
		it.Env.Setenv(EnvColor, config.ColorAlways)
	}

	sh := core.NewShell(it, events.NewSession())
	sh.Stage = stage
	sh.PromptTemplate = cfg.Prompt
	return sh, closeEvents, nil
}

func setColor(cfg *config.Configuration) {
	mode := cfg.Color
	if colorMode != "" {
		mode = colorMode
	}

	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		// Diagnostics and traces go to standard error.
		color.NoColor = os.Getenv("TERM") == "dumb" || !isTerminal(os.Stderr)
	}
}

func isTerminal(r interface{}) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// It returns the process exit status.
func Execute() int {
	return execute(rootCmd, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(root *cobra.Command, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	exitStatus = 0
	reset(root)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "v6sh: %v\n", err)
		if exitStatus == 0 {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				return interp.StatusNotFound
			}
			return interp.StatusUsage
		}
	}
	return exitStatus
}

// reset puts every flag back to its default so the command tree can be
// executed more than once.
func reset(cmd *cobra.Command) {
	resetFlag := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(resetFlag)
	cmd.PersistentFlags().VisitAll(resetFlag)
	cmd.SilenceUsage = false

	for _, child := range cmd.Commands() {
		reset(child)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&command, "command", "c", "", "run `COMMANDS` and exit")
	flags.BoolVarP(&xtrace, "xtrace", "x", false, "print commands to standard error before running them")
	flags.Var(&stage, "stage", "stop after `STAGE`: scan, parse, plan or run")

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultDirName, "configuration directory")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "color diagnostics: always, auto or never (default from config)")
}
