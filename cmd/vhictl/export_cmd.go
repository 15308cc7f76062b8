package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/export"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	Format    string
	Out       string
	Indicator string
	Region    string
	YearFrom  int
	YearTo    int
	WeekFrom  int
	WeekTo    int
	Asc       bool
	Desc      bool
	All       bool
}

func newExportCmd(a *app) *cobra.Command {
	def := domain.DefaultQuery()
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export --format csv|xlsx --out <file> [filters]",
		Short: "Write the filtered table view to a CSV or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := opts.query()
			if err != nil {
				return err
			}
			write, err := exportWriter(opts.Format)
			if err != nil {
				return err
			}

			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			rows := domain.Table(domain.Filter(ds, q), q.Indicator)

			if opts.Out == "-" {
				return write(cmd.OutOrStdout(), rows, q.Indicator)
			}
			f, err := os.Create(opts.Out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := write(f, rows, q.Indicator); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			a.logger.Info("table exported", "path", opts.Out, "rows", len(rows), "format", opts.Format)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Format, "format", "csv", "file format: csv or xlsx")
	f.StringVar(&opts.Out, "out", "-", "output file, - for stdout")
	f.StringVar(&opts.Indicator, "indicator", string(def.Indicator), "indicator column: VCI, TCI or VHI")
	f.StringVar(&opts.Region, "region", def.Region, "region name, or All")
	f.IntVar(&opts.YearFrom, "year-from", def.Years.From, "first year")
	f.IntVar(&opts.YearTo, "year-to", def.Years.To, "last year")
	f.IntVar(&opts.WeekFrom, "week-from", def.Weeks.From, "first week")
	f.IntVar(&opts.WeekTo, "week-to", def.Weeks.To, "last week")
	f.BoolVar(&opts.Asc, "asc", false, "sort ascending by indicator")
	f.BoolVar(&opts.Desc, "desc", false, "sort descending by indicator")
	f.BoolVar(&opts.All, "all", false, "ignore range and region filters, as the panel reset does")
	return cmd
}

func (o exportOptions) query() (domain.Query, error) {
	q := domain.Query{
		Indicator:  domain.Indicator(strings.ToUpper(o.Indicator)),
		Region:     o.Region,
		Years:      domain.Range{From: o.YearFrom, To: o.YearTo},
		Weeks:      domain.Range{From: o.WeekFrom, To: o.WeekTo},
		Ascending:  o.Asc,
		Descending: o.Desc,
	}
	if !q.Indicator.Valid() {
		return domain.Query{}, fmt.Errorf("unknown indicator %q", o.Indicator)
	}
	if o.All {
		q = q.Reset()
		q.Ascending, q.Descending = o.Asc, o.Desc
	}
	return q, nil
}

type exportFunc func(w io.Writer, rows []domain.TableRow, ind domain.Indicator) error

func exportWriter(format string) (exportFunc, error) {
	switch strings.ToLower(format) {
	case "csv":
		return export.CSV, nil
	case "xlsx":
		return export.XLSX, nil
	default:
		return nil, errors.New("--format must be csv or xlsx")
	}
}
