package main

import (
	"github.com/spf13/cobra"

	"github.com/openapi-nexus/nexus/pkg/codegen"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <openapi-document>",
		Short: "Validate an OpenAPI 3.1 document without generating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := codegen.ValidateFile(args[0]); err != nil {
				reportError(err)
				return err
			}
			logger.Info("document is valid", "path", args[0])
			return nil
		},
	}
}
