package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/spf13/cobra"
)

func newIngestCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ingest [--format table|json|yaml]",
		Short: "Load the data directory and summarize each source file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			if format != "table" {
				return writeStructured(cmd.OutOrStdout(), format, summarize(ds))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tREGION\tCODE\tREAD\tKEPT")
			for _, f := range ds.Files {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", f.Name, f.Region, codeString(f.RegionID), f.RowsRead, f.RowsKept)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d observations from %d files (snapshot %s)\n", ds.Len(), len(ds.Files), ds.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or yaml")
	return cmd
}

type ingestSummary struct {
	Snapshot string               `json:"snapshot" yaml:"snapshot"`
	Rows     int                  `json:"rows" yaml:"rows"`
	Files    []domain.FileSummary `json:"files" yaml:"files"`
}

func summarize(ds *domain.Dataset) ingestSummary {
	return ingestSummary{Snapshot: ds.ID.String(), Rows: ds.Len(), Files: ds.Files}
}

func codeString(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}
