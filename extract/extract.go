// Package extract finds archives and unpacks them with external tools.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/shlex"
	"go.senan.xyz/natcmp"
	"go.senan.xyz/nofuture/fileutil"
)

var ErrExtractionFailed = errors.New("extraction failed")

var DefaultFormats = []string{"zip", "rar"}

type Extractor interface {
	// Extract unpacks archive into destDir.
	Extract(ctx context.Context, archive, destDir string) error
}

// Find returns the archives directly in dir with one of exts, in natural
// order. Extensions match case-insensitively and may have a leading dot.
func Find(dir string, exts []string) ([]string, error) {
	want := map[string]struct{}{}
	for _, ext := range exts {
		want[normExt(ext)] = struct{}{}
	}

	paths, err := fileutil.GlobBase(dir, "*")
	if err != nil {
		return nil, fmt.Errorf("glob dir: %w", err)
	}

	var archives []string
	for _, path := range paths {
		if _, ok := want[normExt(filepath.Ext(path))]; !ok {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat archive: %w", err)
		}
		if info.IsDir() {
			continue
		}
		archives = append(archives, path)
	}
	slices.SortFunc(archives, natcmp.Compare)
	return archives, nil
}

const (
	markerArchive = "<archive>"
	markerDest    = "<dest>"
	markerName    = "<name>"
)

// DefaultCommand is used for every format without its own command.
const DefaultCommand = "7z x -y -o<dest> <archive>"

// Subproc extracts by running a command per archive format. Arguments may
// contain the markers <archive>, <dest>, and <name>, which is the archive's
// base name without its extension.
type Subproc struct {
	commands map[string][]string
	fallback []string
}

func NewSubproc() *Subproc {
	fallback, _ := shlex.Split(DefaultCommand)
	return &Subproc{
		commands: map[string][]string{},
		fallback: fallback,
	}
}

// AddCommand sets the command for archives with extension ext.
func (s *Subproc) AddCommand(ext, conf string) error {
	parts, err := shlex.Split(conf)
	if err != nil {
		return fmt.Errorf("split command: %w", err)
	}
	if len(parts) == 0 {
		return fmt.Errorf("no command provided")
	}
	ext = normExt(ext)
	if ext == "" {
		return fmt.Errorf("no extension provided")
	}
	s.commands[ext] = parts
	return nil
}

func (s *Subproc) IterCommands(f func(ext string, argv []string)) {
	exts := make([]string, 0, len(s.commands))
	for ext := range s.commands {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	for _, ext := range exts {
		f(ext, s.commands[ext])
	}
}

func (s *Subproc) Extract(ctx context.Context, archive, destDir string) error {
	ext := normExt(filepath.Ext(archive))
	argv, ok := s.commands[ext]
	if !ok {
		argv = s.fallback
	}
	if len(argv) == 0 {
		return fmt.Errorf("%w: no command for %q", ErrExtractionFailed, ext)
	}

	name := strings.TrimSuffix(filepath.Base(archive), filepath.Ext(archive))
	markers := strings.NewReplacer(
		markerArchive, archive,
		markerDest, destDir,
		markerName, name,
	)

	var args []string
	for _, arg := range argv[1:] {
		args = append(args, markers.Replace(arg))
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: run %s: %w: %s", ErrExtractionFailed, argv[0], err, msg)
		}
		return fmt.Errorf("%w: run %s: %w", ErrExtractionFailed, argv[0], err)
	}
	return nil
}

func (s *Subproc) String() string {
	var parts []string
	s.IterCommands(func(ext string, argv []string) {
		parts = append(parts, fmt.Sprintf("%s: %s", ext, strings.Join(argv, " ")))
	})
	parts = append(parts, fmt.Sprintf("*: %s", strings.Join(s.fallback, " ")))
	return strings.Join(parts, ", ")
}

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
