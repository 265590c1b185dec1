package root

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nippo/internal/core"
	"nippo/internal/services"
)

// reportFlags are the editable fields shared by add and edit. Repeating a
// text flag adds one line.
type reportFlags struct {
	date       string
	tasks      []string
	progress   []string
	memo       []string
	challenges []string
	nextPlan   []string
}

func (f *reportFlags) register(cmd *cobra.Command, dateHelp string) {
	fs := cmd.Flags()
	fs.StringVar(&f.date, "date", "", dateHelp)
	fs.StringArrayVarP(&f.tasks, "task", "t", nil, "Task line (repeatable)")
	fs.StringArrayVar(&f.progress, "progress", nil, "Progress line (repeatable)")
	fs.StringArrayVar(&f.memo, "memo", nil, "Memo line (repeatable)")
	fs.StringArrayVar(&f.challenges, "challenge", nil, "Challenge line (repeatable)")
	fs.StringArrayVar(&f.nextPlan, "next", nil, "Next plan line (repeatable)")
}

// input builds the report input; flags never given stay absent
func (f *reportFlags) input(cmd *cobra.Command, date string) core.ReportInput {
	lines := func(name string, vals []string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		s := strings.Join(vals, "\n")
		return &s
	}
	return core.ReportInput{
		Date:       date,
		Tasks:      lines("task", f.tasks),
		Progress:   lines("progress", f.progress),
		Memo:       lines("memo", f.memo),
		Challenges: lines("challenge", f.challenges),
		NextPlan:   lines("next", f.nextPlan),
	}
}

func newAddCmd(app App) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a daily report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date := flags.date
			if date == "" {
				date = app.now().Format(core.DateLayout)
			}
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				rep, err := svc.Submit(ctx, flags.input(cmd, date))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved report %d for %s\n", rep.ID, rep.Date)
				return nil
			})
		},
	}
	flags.register(cmd, "Report date YYYY-MM-DD (default today)")
	return cmd
}

func newEditCmd(app App) *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a report; fields not given are cleared",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := parseID(args)
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				date := flags.date
				if date == "" {
					current, err := svc.Get(ctx, id)
					if err != nil {
						return err
					}
					date = current.Date
				}
				rep, err := svc.Edit(ctx, id, flags.input(cmd, date))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated report %d for %s\n", rep.ID, rep.Date)
				return nil
			})
		},
	}
	flags.register(cmd, "Report date YYYY-MM-DD (default keeps the current date)")
	return cmd
}

func newShowCmd(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one report",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				rep, err := svc.Get(ctx, parseID(args))
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), rep)
				return nil
			})
		},
	}
}

func newListCmd(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				reports, err := svc.List(ctx)
				if err != nil {
					return err
				}
				if len(reports) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reports")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tTASKS")
				for _, r := range reports {
					items := core.ExtractItems(r.TasksPtr())
					fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Date, strings.Join(items, " / "))
				}
				return tw.Flush()
			})
		},
	}
}

func newDeleteCmd(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := parseID(args)
			return app.withService(cmd, func(ctx context.Context, svc *services.ReportService) error {
				if err := svc.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %d\n", id)
				return nil
			})
		},
	}
}

func printReport(w io.Writer, r core.Report) {
	fmt.Fprintf(w, "ID:         %d\n", r.ID)
	fmt.Fprintf(w, "Date:       %s\n", r.Date)
	section := func(label, text string) {
		if text == "" {
			return
		}
		fmt.Fprintf(w, "%s\n", label)
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	section("Tasks:", r.Tasks)
	section("Progress:", core.Deref(r.Progress))
	section("Challenges:", core.Deref(r.Challenges))
	section("Next plan:", core.Deref(r.NextPlan))
	section("Memo:", core.Deref(r.Memo))
}
