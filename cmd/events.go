package cmd

import (
	"fmt"

	"github.com/josephlewis42/v6sh/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the shell event log.",
}

// eventReport is filled in from every entry of the event log.
type eventReport interface {
	Update(le *logger.LogEntry)
}

func reportCommand(use, short string, newReport func() eventReport) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			config, err := loadConfig()
			if err != nil {
				return err
			}

			fd, err := config.ReadEventLog()
			if err != nil {
				return err
			}
			defer fd.Close()

			report := newReport()
			if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
				return err
			}

			out, err := yaml.Marshal(report)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), string(out))

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(
		reportCommand("report", "Show a report of events.", func() eventReport { return &logger.Report{} }),
		reportCommand("failures", "Show lines and commands that failed.", func() eventReport { return logger.NewFailureReport() }),
		reportCommand("sessions", "Show the commands run by each session.", func() eventReport { return &logger.SessionReport{} }),
	)
}
