package nofuture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.senan.xyz/nofuture/dirparse"
	"go.senan.xyz/nofuture/extract"
	"go.senan.xyz/nofuture/fileutil"
	"go.senan.xyz/nofuture/pathformat"
	"go.senan.xyz/nofuture/release"
	"go.senan.xyz/nofuture/report"
)

var ErrDestinationCollision = fileutil.ErrDestinationExists

type Config struct {
	ArchivesDir    string
	StagingDir     string
	OutputDir      string
	ArchiveFormats []string

	PathFormat pathformat.Format
	Extractor  extract.Extractor
	Catalog    Catalog

	// DryRun resolves entries but doesn't extract, move, or remove anything.
	DryRun bool
}

// Entry is a file or dir directly in the staging dir.
type Entry struct {
	Name        string
	SearchTitle string
	Tags        []string
}

func NewEntry(name string) Entry {
	title, tags := dirparse.Split(name)
	return Entry{Name: name, SearchTitle: title, Tags: tags}
}

type Resolved struct {
	Entry
	Release release.Release
}

type Move struct {
	Resolved
	Dest string
}

type Failure struct {
	Name string
	Err  error
}

type Summary struct {
	// Extracted are the archives unpacked into staging. In a dry run they are
	// the archives which would have been.
	Extracted     []string
	ExtractFailed []Failure
	Moved         []Move
	Unresolved    []Failure
	MoveFailed    []Failure
	CleanupFailed []Failure
}

func (s *Summary) Failed() int {
	return len(s.ExtractFailed) + len(s.Unresolved) + len(s.MoveFailed) + len(s.CleanupFailed)
}

// Run extracts, resolves, moves, and cleans up, each phase finishing before
// the next starts. Failures for single archives and entries are collected in
// the summary. A non-nil error means the run couldn't carry on at all.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if cfg.Extractor == nil || cfg.Catalog == nil {
		return nil, errors.New("config needs an extractor and a catalog")
	}
	if cfg.PathFormat.String() == "" {
		if err := cfg.PathFormat.Parse(pathformat.Default); err != nil {
			return nil, fmt.Errorf("parse default path format: %w", err)
		}
	}

	if !cfg.DryRun {
		if err := Setup(cfg.StagingDir, cfg.OutputDir); err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	var s Summary
	var err error

	s.Extracted, s.ExtractFailed, err = Extract(ctx, cfg.Extractor, cfg.ArchivesDir, cfg.StagingDir, cfg.ArchiveFormats, cfg.DryRun)
	if err != nil {
		return &s, fmt.Errorf("extract: %w", err)
	}

	var resolved []Resolved
	resolved, s.Unresolved, err = ResolveStaging(ctx, cfg.Catalog, cfg.StagingDir)
	if err != nil {
		return &s, fmt.Errorf("resolve: %w", err)
	}

	s.Moved, s.MoveFailed, err = Relocate(ctx, &cfg.PathFormat, resolved, cfg.StagingDir, cfg.OutputDir, cfg.DryRun)
	if err != nil {
		return &s, fmt.Errorf("relocate: %w", err)
	}

	s.CleanupFailed = Cleanup(ctx, s.Extracted, cfg.DryRun)

	return &s, nil
}

// Setup creates the staging and output dirs if they don't exist yet.
func Setup(stagingDir, outputDir string) error {
	return fileutil.MkdirAll(stagingDir, outputDir)
}

// prefix for temporary extraction dirs, skipped when listing staging
const extractDirPrefix = ".nofuture-extract-"

// files written by file managers, never releases
var junkEntries = map[string]struct{}{
	".DS_Store":   {},
	"Thumbs.db":   {},
	"desktop.ini": {},
}

func skipStagingEntry(name string) bool {
	if strings.HasPrefix(name, extractDirPrefix) {
		return true
	}
	_, ok := junkEntries[name]
	return ok
}

// Extract unpacks each archive in archivesDir with one of formats into
// stagingDir. An archive which fails is left where it is, and nothing it
// unpacked reaches stagingDir.
func Extract(ctx context.Context, extractor extract.Extractor, archivesDir, stagingDir string, formats []string, dryRun bool) (extracted []string, failed []Failure, err error) {
	archives, err := extract.Find(archivesDir, formats)
	if err != nil {
		return nil, nil, fmt.Errorf("find archives: %w", err)
	}

	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return extracted, failed, err
		}
		if dryRun {
			slog.InfoContext(ctx, "would extract archive", "archive", archive)
			extracted = append(extracted, archive)
			continue
		}
		if err := extractArchive(ctx, extractor, archive, stagingDir); err != nil {
			slog.ErrorContext(ctx, "extracting archive", "archive", archive, "err", err)
			failed = append(failed, Failure{Name: archive, Err: err})
			continue
		}
		slog.InfoContext(ctx, "extracted archive", "archive", archive)
		extracted = append(extracted, archive)
	}
	return extracted, failed, nil
}

func extractArchive(ctx context.Context, extractor extract.Extractor, archive, stagingDir string) error {
	tmpDir, err := os.MkdirTemp(stagingDir, extractDirPrefix)
	if err != nil {
		return fmt.Errorf("make extract dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := extractor.Extract(ctx, archive, tmpDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return fmt.Errorf("read extract dir: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: archive was empty", extract.ErrExtractionFailed)
	}
	for _, e := range entries {
		switch exists, err := fileutil.Exists(filepath.Join(stagingDir, e.Name())); {
		case err != nil:
			return fmt.Errorf("stat staging entry: %w", err)
		case exists:
			return fmt.Errorf("%w: %q is already staged", ErrDestinationCollision, e.Name())
		}
	}
	for _, e := range entries {
		if err := fileutil.Move(filepath.Join(tmpDir, e.Name()), filepath.Join(stagingDir, e.Name())); err != nil {
			return fmt.Errorf("move to staging: %w", err)
		}
	}
	return nil
}

// ResolveStaging resolves every entry directly in stagingDir, hidden ones
// included. Entries which can't be resolved are returned as failures and left
// alone.
func ResolveStaging(ctx context.Context, catalog Catalog, stagingDir string) (resolved []Resolved, unresolved []Failure, err error) {
	dirEntries, err := os.ReadDir(stagingDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read staging dir: %w", err)
	}

	for _, de := range dirEntries {
		if skipStagingEntry(de.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, unresolved, err
		}

		entry := NewEntry(de.Name())
		slog.DebugContext(ctx, "parsed entry", "entry", entry.Name, "search_title", entry.SearchTitle, "tags", entry.Tags)

		r, err := ResolveRelease(ctx, catalog, entry.SearchTitle)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return resolved, unresolved, ctxErr
			}
			slog.ErrorContext(ctx, "resolving entry", "entry", entry.Name, "err", err)
			unresolved = append(unresolved, Failure{Name: entry.Name, Err: err})
			continue
		}

		slog.InfoContext(ctx, "resolved entry", "entry", entry.Name, "release_id", r.ID, "release", r.String())
		resolved = append(resolved, Resolved{Entry: entry, Release: r})
	}
	return resolved, unresolved, nil
}

// Relocate moves each resolved entry from stagingDir to its place in
// outputDir, in entry name order. An existing destination is never
// overwritten, that entry fails with ErrDestinationCollision.
func Relocate(ctx context.Context, pf *pathformat.Format, resolved []Resolved, stagingDir, outputDir string, dryRun bool) (moved []Move, failed []Failure, err error) {
	resolved = slices.Clone(resolved)
	slices.SortFunc(resolved, func(a, b Resolved) int {
		return strings.Compare(a.Name, b.Name)
	})

	claimed := map[string]string{}
	fail := func(name string, err error) {
		slog.ErrorContext(ctx, "moving entry", "entry", name, "err", err)
		failed = append(failed, Failure{Name: name, Err: err})
	}

	for _, r := range resolved {
		if err := ctx.Err(); err != nil {
			return moved, failed, err
		}

		relDest, err := pf.Execute(r.Release)
		if err != nil {
			fail(r.Name, fmt.Errorf("build path: %w", err))
			continue
		}
		src := filepath.Join(stagingDir, r.Name)
		dest := filepath.Join(outputDir, relDest)

		if other, ok := claimed[dest]; ok {
			fail(r.Name, fmt.Errorf("%w: %q was taken by %q", ErrDestinationCollision, dest, other))
			continue
		}

		if dryRun {
			switch exists, err := fileutil.Exists(dest); {
			case err != nil:
				fail(r.Name, fmt.Errorf("stat dest: %w", err))
				continue
			case exists:
				fail(r.Name, fmt.Errorf("%w: %q", ErrDestinationCollision, dest))
				continue
			}
			slog.InfoContext(ctx, "would move entry", "entry", r.Name, "dest", dest)
		} else {
			if err := fileutil.Move(src, dest); err != nil {
				fail(r.Name, err)
				continue
			}
			slog.InfoContext(ctx, "moved entry", "entry", r.Name, "dest", dest)
		}

		claimed[dest] = r.Name
		moved = append(moved, Move{Resolved: r, Dest: dest})
	}
	return moved, failed, nil
}

// Cleanup removes archives which were extracted.
func Cleanup(ctx context.Context, archives []string, dryRun bool) (failed []Failure) {
	for _, archive := range archives {
		if dryRun {
			slog.InfoContext(ctx, "would remove archive", "archive", archive)
			continue
		}
		if err := os.Remove(archive); err != nil {
			slog.ErrorContext(ctx, "removing archive", "archive", archive, "err", err)
			failed = append(failed, Failure{Name: archive, Err: err})
			continue
		}
		slog.DebugContext(ctx, "removed archive", "archive", archive)
	}
	return failed
}

func (s *Summary) Report(started time.Time, took time.Duration, dryRun bool) *report.Report {
	failures := func(fs []Failure) []report.Failure {
		var r []report.Failure
		for _, f := range fs {
			r = append(r, report.Failure{Name: f.Name, Error: f.Err.Error()})
		}
		return r
	}

	r := &report.Report{
		Started:       started,
		Took:          took.Truncate(time.Millisecond).String(),
		DryRun:        dryRun,
		Extracted:     s.Extracted,
		ExtractFailed: failures(s.ExtractFailed),
		Unresolved:    failures(s.Unresolved),
		MoveFailed:    failures(s.MoveFailed),
		CleanupFailed: failures(s.CleanupFailed),
	}
	for _, m := range s.Moved {
		r.Moved = append(r.Moved, report.Move{
			Entry:     m.Name,
			Dest:      m.Dest,
			ReleaseID: m.Release.ID,
			Tags:      m.Tags,
		})
	}
	return r
}
