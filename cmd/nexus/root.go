package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openapi-nexus/nexus/pkg/codegen"
)

const version = "0.1.0"

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "nexus",
		Short:         "Generate TypeScript clients from OpenAPI 3.1 documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the generator version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "nexus", version)
		},
	}
}

// reportError logs a one-line summary with the stable error kind; the
// full chain is debug output.
func reportError(err error) {
	if kind := codegen.ErrorKind(err); kind != "" {
		logger.Error(err.Error(), "kind", kind)
	} else {
		logger.Error(err.Error())
	}
	logger.Debug("error detail", "err", fmt.Sprintf("%+v", err))
}
