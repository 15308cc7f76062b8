package main

import (
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/spf13/cobra"
)

func newRegionsCmd(_ *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "regions [--format yaml|json]",
		Short: "Print the NOAA province catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeStructured(cmd.OutOrStdout(), format, domain.Catalog.Regions())
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
