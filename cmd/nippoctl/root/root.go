// Package root holds the nippoctl command tree.
package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nippo/internal/backend"
	"nippo/internal/core"
	"nippo/internal/services"
)

const Version = "0.1.0"

// App carries what the commands need from the outside world.
type App struct {
	// Open returns a backend; each command closes it when done
	Open func() (*backend.Backend, error)
	Now  func() time.Time
}

func (a App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd builds the command tree for app.
func NewRootCmd(app App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nippoctl",
		Short:         "Record daily reports and print weekly and monthly summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.AddCommand(
		newAddCmd(app),
		newEditCmd(app),
		newShowCmd(app),
		newListCmd(app),
		newDeleteCmd(app),
		newDailyCmd(app),
		newWeeklyCmd(app),
		newMonthlyCmd(app),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(app App) int {
	if err := NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+describe(err))
		return 1
	}
	return 0
}

// describe turns service errors into short messages for the terminal
func describe(err error) string {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid " + ve.Field + ": " + ve.Err.Error()
	case errors.Is(err, core.ErrNotFound):
		return "report not found"
	default:
		return err.Error()
	}
}

// withService opens the backend for one command
func (a App) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *services.ReportService) error) error {
	b, err := a.Open()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runErr := fn(ctx, b.Service)
	return errors.Join(runErr, b.Close())
}

func idArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("exactly one report id is required")
	}
	if id, err := strconv.ParseInt(args[0], 10, 64); err != nil || id <= 0 {
		return fmt.Errorf("invalid report id %q", args[0])
	}
	return nil
}

func parseID(args []string) int64 {
	id, _ := strconv.ParseInt(args[0], 10, 64)
	return id
}

// referenceDate parses --date, defaulting to today
func (a App) referenceDate(raw string) (time.Time, error) {
	if raw == "" {
		return a.now(), nil
	}
	t, err := core.ParseDate(raw)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: "date", Err: err}
	}
	return t, nil
}
