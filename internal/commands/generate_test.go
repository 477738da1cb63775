package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/ai-scheduler/internal/app"
)

const reply = "Day 1: Aug 20 - Read 50 pages\nMilestone: 50 pages done\nDay 2: Aug 21 - Read 50 more\nMilestone: 100 pages done"

type stubCompleter struct {
	reply string
	err   error
	user  string
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.user = userPrompt
	return s.reply, s.err
}

func runCmd(t *testing.T, llm app.Completer, args ...string) (string, string, error) {
	t.Helper()
	opts := &Options{NewCompleter: func(app.GeneratorConfig) (app.Completer, error) { return llm, nil }}
	root := newRootCmd("test", opts)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate_WritesPDF(t *testing.T) {
	llm := &stubCompleter{reply: reply}
	out := filepath.Join(t.TempDir(), "plan.pdf")

	_, stderr, err := runCmd(t, llm, "generate", "--task", "Read a book", "--start", "2025-08-20", "--deadline", "2025-08-21", "-o", out)
	require.NoError(t, err)

	doc, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	assert.Contains(t, stderr, "Schedule with 2 days written to "+out)
	assert.Contains(t, llm.user, "Read a book")
	assert.Contains(t, llm.user, "2025-08-21")
}

func TestGenerate_CSVToStdout(t *testing.T) {
	stdout, _, err := runCmd(t, &stubCompleter{reply: reply}, "generate", "--task", "Read", "--format", "csv", "-o", "-")
	require.NoError(t, err)

	assert.Equal(t, "Day / Date,Goal,Milestone\nDay 1: Aug 20,Read 50 pages,50 pages done\nDay 2: Aug 21,Read 50 more,100 pages done\n", stdout)
}

func TestGenerate_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, _, err = runCmd(t, &stubCompleter{reply: reply}, "generate", "--task", "Learn Go/Generics", "--format", "json")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "Learn_Go_Generics.json"))
	assert.NoError(t, err)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("empty task", func(t *testing.T) {
		llm := &stubCompleter{reply: reply}
		_, _, err := runCmd(t, llm, "generate", "--task", "  ")
		require.Error(t, err)
		assert.Equal(t, app.ErrEmptyTask, err.Error())
		assert.Empty(t, llm.user)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := runCmd(t, &stubCompleter{reply: reply}, "generate", "--task", "Read", "--format", "docx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), app.ErrInvalidFormat)
	})

	t.Run("generation failure leaves no file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "plan.pdf")
		_, _, err := runCmd(t, &stubCompleter{err: errors.New("unauthorized")}, "generate", "--task", "Read", "-o", out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), app.FailureMarker)
		assert.Contains(t, err.Error(), "unauthorized")

		_, statErr := os.Stat(out)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestFillDates(t *testing.T) {
	now := time.Date(2025, 8, 20, 15, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		req := app.DownloadRequest{}
		fillDates(&req, now)
		assert.Equal(t, "2025-08-20", req.StartDate)
		assert.Equal(t, "2025-08-27", req.Deadline)
	})

	t.Run("deadline follows explicit start", func(t *testing.T) {
		req := app.DownloadRequest{StartDate: "2025-09-01"}
		fillDates(&req, now)
		assert.Equal(t, "2025-09-08", req.Deadline)
	})

	t.Run("deadline before start is kept", func(t *testing.T) {
		req := app.DownloadRequest{StartDate: "2025-09-01", Deadline: "2025-08-01"}
		fillDates(&req, now)
		assert.Equal(t, "2025-08-01", req.Deadline)
	})
}
