package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tunesmith/services"
	"tunesmith/storage"
	"tunesmith/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

var (
	renamedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// CLIOptions configures one command-line batch. Yes skips the confirmation
// prompt. A nil Generator uses the configured suggestion service.
type CLIOptions struct {
	Dir         string
	StylePrompt string
	Yes         bool
	Generator   services.Generator
	In          io.Reader
	Out         io.Writer
}

// RunCLI scans opts.Dir, asks for confirmation and renames every supported
// file in one batch, drawing a progress bar on opts.Out
func RunCLI(ctx context.Context, opts CLIOptions) (types.BatchResult, error) {
	dir, err := storage.NewLocalDirectory(opts.Dir)
	if err != nil {
		return types.BatchResult{}, fmt.Errorf("cannot open %s: %w", opts.Dir, err)
	}

	generator := opts.Generator
	if generator == nil {
		generator = NewGenerator()
	}
	orchestrator := services.NewOrchestrator(services.NewScanner(false), services.NewSuggestionClient(generator), services.LogNotifier{})

	result, err := orchestrator.LoadFolder(dir)
	if err != nil {
		return types.BatchResult{}, err
	}
	if result.Outcome == services.ScanNoMatches {
		fmt.Fprintf(opts.Out, "No supported audio files in %s\n", dir.Name())
		return types.BatchResult{}, nil
	}

	fmt.Fprintf(opts.Out, "Found %d audio files in %s:\n", len(result.Candidates), dir.Name())
	for _, c := range result.Candidates {
		fmt.Fprintf(opts.Out, "  %s\n", c.Name)
	}

	if !opts.Yes && !confirm(opts.In, opts.Out, fmt.Sprintf("Rename %d files?", len(result.Candidates))) {
		fmt.Fprintln(opts.Out, "Aborted")
		return types.BatchResult{}, nil
	}

	bar := progressbar.NewOptions(len(result.Candidates),
		progressbar.OptionSetWriter(opts.Out),
		progressbar.OptionSetDescription("Asking for names"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(opts.Out) }),
	)

	progress := func(file types.CandidateFile, done, total int) {
		switch file.Status {
		case types.FileStatusRenaming:
			bar.Describe("Renaming")
		case types.FileStatusRenamed, types.FileStatusError:
			bar.Describe(file.Name)
			_ = bar.Add(1)
		}
	}

	batch, err := orchestrator.RunBatch(ctx, opts.StylePrompt, progress)
	if err != nil {
		_ = bar.Exit()
		return batch, err
	}
	_ = bar.Finish()

	printSummary(opts.Out, result.Candidates, orchestrator.Candidates())
	fmt.Fprintf(opts.Out, "Renamed %d of %d files\n", batch.SuccessCount, batch.TotalCount)
	if batch.SuccessCount < batch.TotalCount {
		return batch, errors.New("some files could not be renamed")
	}
	return batch, nil
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	if in == nil {
		return false
	}
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printSummary(out io.Writer, before, after []types.CandidateFile) {
	for i, c := range after {
		switch c.Status {
		case types.FileStatusRenamed:
			fmt.Fprintf(out, "  %s -> %s\n", dimStyle.Render(before[i].Name), renamedStyle.Render(c.NewName))
		case types.FileStatusError:
			fmt.Fprintf(out, "  %s: %s\n", dimStyle.Render(before[i].Name), failedStyle.Render(c.Error))
		}
	}
}
