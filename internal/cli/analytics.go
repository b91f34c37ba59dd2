package cli

import (
	"fmt"
	"time"

	"boxstudio/internal/analytics"

	"github.com/spf13/cobra"
)

func newFactsCommand(a *app) *cobra.Command {
	var flat bool
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print the all-time facts snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.analyticsService()
			if err != nil {
				return err
			}
			defer closeFn()

			facts, err := svc.GetFacts(cmd.Context())
			if err != nil {
				return err
			}
			if flat {
				return printJSON(cmd.OutOrStdout(), facts.Flatten())
			}
			return printJSON(cmd.OutOrStdout(), facts)
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "Print dotted metric names instead of nested groups")
	return cmd
}

func newKPIsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kpis",
		Short: "Print the all-time KPI ratios",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.analyticsService()
			if err != nil {
				return err
			}
			defer closeFn()

			kpis, err := svc.GetKPIs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), kpis)
		},
	}
}

func newWindowCommand(a *app) *cobra.Command {
	var startRaw, endRaw string
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print revenue, refund rate and delivery rate for an inclusive window",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseWindow(startRaw, endRaw)
			if err != nil {
				return err
			}

			svc, closeFn, err := a.analyticsService()
			if err != nil {
				return err
			}
			defer closeFn()

			window, err := svc.GetWindowed(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), window)
		},
	}
	cmd.Flags().StringVar(&startRaw, "start", "", "Window start (RFC 3339)")
	cmd.Flags().StringVar(&endRaw, "end", "", "Window end (RFC 3339), defaults to now")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	end := time.Now().UTC()
	if endRaw != "" {
		if end, err = time.Parse(time.RFC3339, endRaw); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--start must not be after --end")
	}
	return start, end, nil
}

func (a *app) analyticsService() (analytics.Service, func(), error) {
	db, closeFn, err := a.openDB()
	if err != nil {
		return nil, nil, err
	}
	return analytics.NewService(analytics.NewRepository(db), nil), closeFn, nil
}
