package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/josephlewis42/v6sh/core"
	"github.com/josephlewis42/v6sh/core/interp"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the commands run inside the shell process
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands of the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		sh := core.NewShell(interp.New(nil, io.Discard, io.Discard), nil)

		var builtins []string
		for name := range sh.Interp.Builtins {
			builtins = append(builtins, name)
		}

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
