package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders"
)

// sourceFlags are the knowledge base flags shared by build, ask, chat,
// housing, serve and tui.
type sourceFlags struct {
	files        []string
	urls         []string
	defaults     bool
	manifest     string
	chunkSize    int
	chunkOverlap int
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringSliceVarP(&f.files, "file", "f", nil, "local file to index (pdf, txt, md, html); repeatable")
	cmd.Flags().StringSliceVarP(&f.urls, "url", "u", nil, "web page to index; repeatable")
	cmd.Flags().BoolVar(&f.defaults, "defaults", false, "include the configured default sources")
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", "YAML manifest listing sources")
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", 0, "chunk size in characters (0 = configured)")
	cmd.Flags().IntVar(&f.chunkOverlap, "chunk-overlap", -1, "chunk overlap in characters (-1 = configured)")
}

// empty reports whether no source was requested.
func (f *sourceFlags) empty() bool {
	return len(f.files) == 0 && len(f.urls) == 0 && !f.defaults && f.manifest == ""
}

// request builds the build request described by the flags.
func (f *sourceFlags) request() (domain.BuildRequest, error) {
	req := domain.BuildRequest{
		Files:        append([]string(nil), f.files...),
		URLs:         append([]string(nil), f.urls...),
		UseDefaults:  f.defaults,
		ChunkSize:    f.chunkSize,
		ChunkOverlap: f.chunkOverlap,
	}
	if f.manifest != "" {
		m, err := loaders.LoadManifest(f.manifest)
		if err != nil {
			return domain.BuildRequest{}, err
		}
		m.Apply(&req)
	}
	return req, nil
}

// buildFromFlags builds the session knowledge base when sources were
// requested. It returns nil without building otherwise.
func buildFromFlags(ctx context.Context, svc *Services, f *sourceFlags, out io.Writer) (*domain.BuildReport, error) {
	if f.empty() {
		return nil, nil
	}
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	req.Progress = func(p domain.BuildProgress) {
		if verbose {
			fmt.Fprintf(out, "  [%s] %s\n", p.Stage, p.Message)
		}
	}
	report, err := svc.Knowledge.Build(ctx, svc.Session, req)
	if report != nil {
		printDiagnostics(out, report.Diagnostics)
	}
	if err != nil {
		return report, fmt.Errorf("build knowledge base: %w", err)
	}
	return report, nil
}

func printDiagnostics(out io.Writer, diags []domain.Diagnostic) {
	for _, d := range diags {
		reason := d.Reason
		if reason == "" {
			reason = string(d.Severity)
		}
		if d.Source != "" {
			fmt.Fprintf(out, "%s: %s: %s\n", reason, d.Source, d.Message)
		} else {
			fmt.Fprintf(out, "%s: %s\n", reason, d.Message)
		}
	}
}

func printReport(out io.Writer, report *domain.BuildReport) {
	fmt.Fprintf(out, "Knowledge base ready: %d documents, %d chunks, %d characters (%s)\n",
		report.Documents, report.Chunks, report.TotalChars(), report.Duration.Round(time.Millisecond))
	printStats(out, report.Stats)
}

func printStats(out io.Writer, stats []domain.SourceStat) {
	if len(stats) == 0 {
		fmt.Fprintln(out, "No sources indexed.")
		return
	}
	for i, s := range stats {
		fmt.Fprintf(out, "  [%d] %s (%s) - %d chars, %d chunks\n",
			i+1, s.Identifier, s.KindLabel, s.CharCount, s.Chunks)
	}
}
