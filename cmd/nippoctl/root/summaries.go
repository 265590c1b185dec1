package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nippo/internal/export"
	"nippo/internal/services"
)

func newDailyCmd(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "daily <id>",
		Short: "Print the daily report text for one report",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				text, err := svc.GenerateDailyReport(ctx, parseID(args))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newWeeklyCmd(app App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Print the Monday to Sunday summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := app.referenceDate(date)
			if err != nil {
				return err
			}
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				weekly, err := svc.WeeklyReport(ctx, ref)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), weekly.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any date in the wanted week (default today)")
	return cmd
}

func newMonthlyCmd(app App) *cobra.Command {
	var (
		date     string
		xlsxPath string
		ranking  bool
	)
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Print the calendar month summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := app.referenceDate(date)
			if err != nil {
				return err
			}
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				monthly, err := svc.MonthlyReport(ctx, ref)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, monthly.Text)
				if ranking {
					fmt.Fprintln(out)
					for _, tc := range monthly.RankedTasks {
						fmt.Fprintf(out, "%4d  %s\n", tc.Count, tc.Task)
					}
				}
				if xlsxPath == "" {
					return nil
				}
				return writeWorkbook(xlsxPath, monthly, cmd)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any date in the wanted month (default today)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the month as an .xlsx workbook to this path")
	cmd.Flags().BoolVar(&ranking, "ranking", false, "Print the task frequency ranking")
	return cmd
}

func writeWorkbook(path string, monthly services.MonthlyReport, cmd *cobra.Command) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := export.WriteMonthly(f, monthly); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
