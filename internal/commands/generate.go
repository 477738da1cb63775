package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/klabast/wb-services/ai-scheduler/internal/app"
)

type generateFlags struct {
	task     string
	start    string
	deadline string
	format   string
	output   string
	reminder string
}

func newGenerateCmd(opts *Options) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one schedule and write it to a file",
		Long: `Generate one schedule without the web page.

Examples:
  # Writes Read_Moby_Dick.pdf in the current directory
  ai-scheduler generate --task "Read Moby Dick" --start 2025-08-20 --deadline 2025-08-27

  # CSV on stdout
  ai-scheduler generate --task "Learn Go" --format csv -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(f.task) == "" {
				return errors.New(app.ErrEmptyTask)
			}
			format, ok := app.NormalizeFormat(f.format)
			if !ok {
				return fmt.Errorf("%s: %q", app.ErrInvalidFormat, f.format)
			}
			f.format = format

			_, logger, llm, err := setup(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runGenerate(cmd, f, llm, logger)
		},
	}

	cmd.Flags().StringVar(&f.task, "task", "", "task description (required)")
	cmd.Flags().StringVar(&f.start, "start", "", "start date, default today (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline, default start + 7 days (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.format, "format", app.FormatPDF, "output format: pdf, csv, json or ics")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", `output file, "-" for stdout (default derived from task)`)
	cmd.Flags().StringVar(&f.reminder, "reminder", "", "same-day reminder HH:MM for ics output")
	return cmd
}

func runGenerate(cmd *cobra.Command, f *generateFlags, llm app.Completer, logger *zap.Logger) error {
	req := app.DownloadRequest{
		Task:         strings.TrimSpace(f.task),
		StartDate:    f.start,
		Deadline:     f.deadline,
		Format:       f.format,
		ReminderTime: f.reminder,
	}
	fillDates(&req, time.Now())

	if f.output == "-" && req.Format == app.FormatPDF && isTerminal(cmd.OutOrStdout()) {
		return errors.New("refusing to write a PDF to the terminal, use --output")
	}

	pipeline := app.NewPipeline(llm, app.NewRenderer(), nil, logger)
	report, err := pipeline.Generate(cmd.Context(), req.ScheduleRequest())
	if err != nil {
		return errors.New(app.FailureMessage(err))
	}

	var buf bytes.Buffer
	if err := app.Export(&buf, pipeline.Renderer(), req, report.Records); err != nil {
		return fmt.Errorf("failed to render schedule: %w", err)
	}

	if f.output == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	path := f.output
	if path == "" {
		path = app.DownloadFilename(req.Task, req.Format)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Schedule with %d days written to %s\n", len(report.Records), path)
	return nil
}

// fillDates defaults the start to today and the deadline to a week later.
// An explicit deadline before the start is passed through unchanged.
func fillDates(req *app.DownloadRequest, now time.Time) {
	if req.StartDate == "" {
		req.StartDate = now.Format("2006-01-02")
	}
	if req.Deadline == "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			start = now
		}
		req.Deadline = start.AddDate(0, 0, 7).Format("2006-01-02")
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
