package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.senan.xyz/table/table"

	"go.senan.xyz/nofuture"
	"go.senan.xyz/nofuture/cmd/internal/nofutureflag"
	"go.senan.xyz/nofuture/notifications"
	"go.senan.xyz/nofuture/report"
	"go.senan.xyz/nofuture/researchlink"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Extracts archives into the staging dir, finds each staged release on Discogs,\n")
		fmt.Fprintf(flag.Output(), "and moves it to the output dir as label/[catno] artist - title (year)\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

var dmp = diffmatchpatch.New()

func main() {
	defer nofutureflag.Logging()()
	var (
		cfg           = nofutureflag.Config()
		discogs       = nofutureflag.Discogs()
		notifs        = nofutureflag.Notifications()
		researchLinks = nofutureflag.ResearchLinks()
		reportPath    = flag.String("report-path", "", "Write a YAML report of the run to this path")
	)
	nofutureflag.Parse()

	if flag.NArg() > 0 {
		slog.Error("unexpected arguments", "args", flag.Args())
		return
	}

	// before anything touches the disk
	if err := discogs.Validate(); err != nil {
		slog.Error("checking discogs client", "err", err)
		return
	}
	cfg.Catalog = discogs

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	summary, err := nofuture.Run(ctx, cfg)
	took := time.Since(start)

	// still notify if we were interrupted
	notifyCtx := context.WithoutCancel(ctx)

	if err != nil {
		slog.Error("running", "err", err)
		notifs.Sendf(notifyCtx, notifications.RunError, "run failed after %s: %v", took.Truncate(time.Second), err)
	}
	if summary == nil {
		return
	}

	if err := printSummary(os.Stdout, summary, cfg.OutputDir, cfg.DryRun, researchLinks); err != nil {
		slog.Error("printing summary", "err", err)
	}

	if *reportPath != "" {
		if err := report.Write(*reportPath, summary.Report(start, took, cfg.DryRun)); err != nil {
			slog.Error("writing report", "err", err)
		}
	}

	if err == nil {
		notifs.Sendf(notifyCtx, notifications.Complete, "%d extracted, %d moved, %d failed",
			len(summary.Extracted), len(summary.Moved), summary.Failed())
	}
}

func printSummary(w io.Writer, s *nofuture.Summary, outputDir string, dryRun bool, researchLinks *researchlink.Builder) error {
	extractVerb, moveVerb := "extracted", "moved"
	if dryRun {
		extractVerb, moveVerb = "would extract", "would move"
	}

	// every row is kind, name, detail
	t := table.NewStringWriter()
	row := func(kind, name string, detail any) {
		fmt.Fprintf(t, "%s\t%s\t%s\n", kind, cell(name), cell(fmt.Sprint(detail)))
	}

	for _, a := range s.Extracted {
		row(extractVerb, a, "")
	}
	for _, f := range s.ExtractFailed {
		row("extract failed", f.Name, f.Err)
	}
	for _, m := range s.Moved {
		if dryRun {
			rel, _ := filepath.Rel(outputDir, m.Dest)
			row(moveVerb, m.Name, fmtDiff(m.Name, rel))
			continue
		}
		row(moveVerb, m.Name, m.Dest)
	}
	for _, f := range s.Unresolved {
		row("unresolved", f.Name, f.Err)

		entry := nofuture.NewEntry(f.Name)
		links, err := researchLinks.Build(researchlink.Query{Entry: entry.Name, Title: entry.SearchTitle, Tags: entry.Tags})
		if err != nil {
			slog.Error("building research links", "entry", f.Name, "err", err)
		}
		for _, l := range links {
			row("research", f.Name, fmt.Sprintf("%s %s", l.Name, l.URL))
		}
	}
	for _, f := range s.MoveFailed {
		row("move failed", f.Name, f.Err)
	}
	for _, f := range s.CleanupFailed {
		row("cleanup failed", f.Name, f.Err)
	}

	out := strings.TrimRight(t.String(), "\n")
	if err := t.Reset(); err != nil {
		return fmt.Errorf("format table: %w", err)
	}
	if out != "" {
		fmt.Fprintln(w, out)
	}
	fmt.Fprintf(w, "%d %s, %d %s, %d failed\n", len(s.Extracted), extractVerb, len(s.Moved), moveVerb, s.Failed())
	return nil
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// cell keeps a value on one line in one column
func cell(s string) string {
	return cellReplacer.Replace(s)
}

func fmtDiff(before, after string) string {
	diff := dmp.DiffMain(before, after, false)
	if d := dmp.DiffPrettyText(diff); d != "" {
		return d
	}
	return "[empty]"
}
