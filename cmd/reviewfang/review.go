package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/reviewfang/internal/config"
	"github.com/Sumatoshi-tech/reviewfang/internal/review"
	"github.com/Sumatoshi-tech/reviewfang/pkg/syntax"
	"github.com/Sumatoshi-tech/reviewfang/pkg/textutil"
)

var (
	errUnsupportedFile = errors.New("unsupported file type")
	errNoFunctionMatch = errors.New("no top-level function matches")
)

func reviewCmd() *cobra.Command {
	var (
		functions []string
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "review FILE",
		Short: "Review a source file and print the findings",
		Long: `Review a source file with the configured findings model and print the
findings as a table. With --function, only the named top-level functions
are reviewed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return runReview(cmd.Context(), args[0], functions)
		},
	}

	cmd.Flags().StringSliceVarP(&functions, "function", "f", nil, "top-level function to review (repeatable)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runReview(ctx context.Context, path string, functions []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err = cfg.RequireModel(); err != nil {
		return err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	index, err := parseFile(ctx, path, src)
	if err != nil {
		return err
	}

	spans := reviewSpans(index, functions, src)
	if len(spans) == 0 {
		return fmt.Errorf("%w: %s", errNoFunctionMatch, strings.Join(functions, ", "))
	}

	logger := newLogger()
	client := review.NewClient(
		cfg.Review.Endpoint,
		cfg.Review.Model,
		os.Getenv(cfg.Review.APIKeyEnv),
		cfg.Review.Timeout,
		logger,
	)

	started := time.Now()

	var findings []review.Finding

	for _, span := range spans {
		if int(span.End-span.Start) > cfg.Review.MaxRegionBytes {
			logger.Debug("region skipped",
				slog.String("file", path),
				slog.String("size", humanize.Bytes(uint64(span.End-span.Start))))

			continue
		}

		region := string(src[span.Start:span.End])
		startLine := textutil.LineAt(string(src), span.Start)

		spanFindings, reviewErr := client.Review(ctx, path, startLine, region)
		if reviewErr != nil {
			return fmt.Errorf("review %s: %w", path, reviewErr)
		}

		findings = append(findings, spanFindings...)
	}

	renderFindings(os.Stdout, path, findings, time.Since(started))

	return nil
}

// parseFile parses the file and builds its syntax index, detecting the
// language from the file extension.
func parseFile(ctx context.Context, path string, src []byte) (*syntax.Index, error) {
	language := syntax.DetectLanguage("", path)
	if language == "" {
		return nil, fmt.Errorf("%w: %s", errUnsupportedFile, path)
	}

	parser, err := syntax.NewParser(language)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	tree, err := parser.Parse(ctx, src, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return syntax.BuildIndex(tree.RootNode()), nil
}

func reviewSpans(index *syntax.Index, functions []string, src []byte) []syntax.Span {
	if len(functions) == 0 {
		return []syntax.Span{{Start: 0, End: uint(len(src))}}
	}

	return syntax.TopLevelFunctions(index, functions, src)
}

func renderFindings(out io.Writer, path string, findings []review.Finding, elapsed time.Duration) {
	if len(findings) == 0 {
		color.New(color.FgGreen).Fprintf(out, "No findings in %s (%s)\n", path, elapsed.Round(time.Millisecond))

		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Line", "Snippet", "Issue", "Description"})

	for _, finding := range findings {
		tbl.AppendRow(table.Row{
			finding.Location.Line,
			finding.Location.Snippet,
			finding.Issue,
			finding.Description,
		})
	}

	tbl.Render()

	color.New(color.FgRed).Fprintf(out, "%d finding(s) in %s (%s)\n", len(findings), path, elapsed.Round(time.Millisecond))
}
