package main

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/vhi-dashboard/internal/adapter/noaa"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	From    int
	To      int
	Codes   []int
	Replace bool
}

func newFetchCmd(a *app) *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch [--from <year>] [--to <year>] [--region <code>]...",
		Short: "Download region time series from NOAA STAR into the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := noaa.FetcherConfig{
				Dir:         a.dataDir,
				YearStart:   a.cfg.NOAAYearStart,
				YearEnd:     a.cfg.NOAAYearEnd,
				Rate:        a.cfg.NOAARate,
				Concurrency: a.cfg.NOAAConcurrency,
				Replace:     opts.Replace,
			}
			if opts.From > 0 {
				cfg.YearStart = opts.From
			}
			if opts.To > 0 {
				cfg.YearEnd = opts.To
			}
			if cfg.YearStart > cfg.YearEnd {
				return errors.New("--from must not be after --to")
			}

			regions, err := selectRegions(domain.Catalog, opts.Codes)
			if err != nil {
				return err
			}

			client := noaa.NewClient(a.cfg.NOAABaseURL, a.cfg.NOAATimeout, a.logger)
			fetcher := noaa.NewFetcher(client, domain.Catalog, cfg, a.logger, a.metrics)
			paths, err := fetcher.Fetch(cmd.Context(), regions...)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.From, "from", 0, "first year (default $NOAA_YEAR_START)")
	cmd.Flags().IntVar(&opts.To, "to", 0, "last year (default $NOAA_YEAR_END)")
	cmd.Flags().IntSliceVar(&opts.Codes, "region", nil, "province code to fetch, repeatable (default all)")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "remove older files of each fetched region")
	return cmd
}

// selectRegions resolves province codes against the catalog. No codes selects
// the whole catalog.
func selectRegions(catalog *domain.RegionCatalog, codes []int) ([]domain.Region, error) {
	if len(codes) == 0 {
		return catalog.Regions(), nil
	}
	out := make([]domain.Region, 0, len(codes))
	for _, code := range codes {
		name, ok := catalog.Name(code)
		if !ok {
			return nil, fmt.Errorf("unknown province code %d", code)
		}
		out = append(out, domain.Region{Code: code, Name: name})
	}
	return out, nil
}
