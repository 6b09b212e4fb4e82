package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

var errUnhealthy = errors.New("one or more critical checks are unhealthy")

func checkCmd(cfgFile *string) *cobra.Command {
	var (
		group   string
		asJSON  bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every check once and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *cfgFile)
			if err != nil {
				return err
			}
			logger := observe.NopLogger()
			if verbose {
				logger = observe.NewLoggerWithWriter("debug", cmd.ErrOrStderr())
			}

			var mw *observe.Middleware
			if verbose {
				mw = observe.NewMiddleware(nil, nil, logger)
			}
			agg, probes, err := newAggregator(cmd.Context(), cfg, mw, logger)
			if err != nil {
				return err
			}
			defer probes.Close()

			var opts []health.RunOption
			if group != "" {
				opts = append(opts, health.WithGroup(group))
			}
			rep := agg.RunAll(cmd.Context(), opts...)

			out := cmd.OutOrStdout()
			if asJSON {
				err = writeReportJSON(out, rep)
			} else {
				err = writeReportTable(out, rep)
			}
			if err != nil {
				return err
			}
			if !rep.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "only run checks in this group")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each check to stderr")
	return cmd
}

func writeReportJSON(w io.Writer, rep health.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeReportTable(w io.Writer, rep health.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tDURATION\tMESSAGE")
	for _, r := range rep.Checks {
		msg := r.Message
		if r.Error != nil {
			msg += ": " + r.Error.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Status, r.Duration.Round(time.Millisecond), msg)
	}
	fmt.Fprintf(tw, "\noverall: %s (%d checks, %s)\n", rep.Status, len(rep.Checks), rep.Duration.Round(time.Millisecond))
	return tw.Flush()
}
