package nofutureflag

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.senan.xyz/flagconf"
	"go.senan.xyz/nofuture"
	"go.senan.xyz/nofuture/discogs"
	"go.senan.xyz/nofuture/extract"
	"go.senan.xyz/nofuture/notifications"
	"go.senan.xyz/nofuture/pathformat"
	"go.senan.xyz/nofuture/researchlink"
)

func Logging() (exit func()) {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	h := &slogErrorHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelError)

	return func() {
		if h.hadSlogError.Load() {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

type slogErrorHandler struct {
	slog.Handler
	hadSlogError atomic.Bool
}

func (n *slogErrorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelError {
		n.hadSlogError.Store(true)
	}
	return n.Handler.Handle(ctx, r)
}

func Parse() {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	defaultConfigPath := filepath.Join(userConfig, nofuture.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return nofuture.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), nofuture.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-20s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

// Config registers the run flags. The catalog is left for the caller to set.
func Config() *nofuture.Config {
	var cfg nofuture.Config

	flag.StringVar(&cfg.ArchivesDir, "archives-dir", ".", "Directory to look for archives in")
	flag.StringVar(&cfg.StagingDir, "staging-dir", "staging", "Directory to extract archives into")
	flag.StringVar(&cfg.OutputDir, "output-dir", "formatted", "Directory to move resolved releases into")

	cfg.ArchiveFormats = extract.DefaultFormats
	flag.Var(&archiveFormatParser{formats: &cfg.ArchiveFormats}, "archive-format", "Archive extension to extract, replacing the defaults (stackable)")

	ex := extract.NewSubproc()
	cfg.Extractor = ex
	flag.Var(&extractCommandParser{ex}, "extract-command", `Command for an archive extension, eg "rar unrar x <archive> <dest>/" (stackable)`)

	if err := cfg.PathFormat.Parse(pathformat.Default); err != nil {
		panic(err)
	}
	flag.Var(&pathFormatParser{&cfg.PathFormat}, "path-format", "Path format for resolved releases, relative to the output dir")
	flag.BoolVar(&cfg.PathFormat.ASCII, "ascii-paths", false, "Transliterate path components to ASCII")

	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Resolve entries but don't change anything on disk")

	return &cfg
}

func Discogs() *discogs.Client {
	var c discogs.Client
	c.HTTPClient = http.DefaultClient
	c.UserAgent = fmt.Sprintf(`%s/%s`, nofuture.Name, nofuture.Version)

	flag.StringVar(&c.Token, "discogs-token", os.Getenv(discogs.TokenEnv), fmt.Sprintf("Discogs personal access token (default $%s)", discogs.TokenEnv))
	flag.StringVar(&c.BaseURL, "discogs-base-url", discogs.DefaultBaseURL, "Discogs API base URL")
	flag.DurationVar(&c.RateLimit, "discogs-rate-limit", discogs.DefaultRateLimit, "Discogs rate limit duration")
	return &c
}

func Notifications() *notifications.Notifications {
	var n notifications.Notifications
	flag.Var(&notificationsParser{&n}, "notification-uri", "Add a shoutrrr notification URI for an event (stackable)")
	return &n
}

func ResearchLinks() *researchlink.Builder {
	var r researchlink.Builder
	if err := r.AddSource("discogs", researchlink.Discogs); err != nil {
		panic(err)
	}
	flag.Var(&researchLinkParser{&r}, "research-link", "Define a helper URL to help find an unresolved entry (stackable)")
	return &r
}

var _ flag.Value = (*archiveFormatParser)(nil)
var _ flag.Value = (*extractCommandParser)(nil)
var _ flag.Value = (*pathFormatParser)(nil)
var _ flag.Value = (*researchLinkParser)(nil)
var _ flag.Value = (*notificationsParser)(nil)

type archiveFormatParser struct {
	formats *[]string
	set     bool
}

func (a *archiveFormatParser) Set(value string) error {
	if !a.set {
		*a.formats = nil
		a.set = true
	}
	for _, f := range strings.Split(value, ",") {
		f = strings.TrimPrefix(strings.TrimSpace(f), ".")
		if f == "" {
			return fmt.Errorf("empty archive format")
		}
		*a.formats = append(*a.formats, f)
	}
	return nil
}
func (a archiveFormatParser) String() string {
	if a.formats == nil {
		return ""
	}
	return strings.Join(*a.formats, ", ")
}

type extractCommandParser struct{ *extract.Subproc }

func (e *extractCommandParser) Set(value string) error {
	ext, command, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok {
		return fmt.Errorf("invalid extract command format. expected eg \"rar unrar x <archive> <dest>/\"")
	}
	return e.AddCommand(ext, command)
}
func (e extractCommandParser) String() string {
	if e.Subproc == nil {
		return ""
	}
	return e.Subproc.String()
}

type pathFormatParser struct{ *pathformat.Format }

func (pf *pathFormatParser) Set(value string) error {
	return pf.Parse(value)
}
func (pf pathFormatParser) String() string {
	if pf.Format == nil {
		return ""
	}
	return pf.Format.String()
}

type researchLinkParser struct{ *researchlink.Builder }

func (r *researchLinkParser) Set(value string) error {
	name, value, _ := strings.Cut(value, " ")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	return r.AddSource(name, value)
}
func (r researchLinkParser) String() string {
	if r.Builder == nil {
		return ""
	}
	var names []string
	for s := range r.Builder.IterSources() {
		names = append(names, s)
	}
	return strings.Join(names, ", ")
}

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		lineErrs = append(lineErrs, n.AddURI(notifications.Event(ev), uri))
	}
	return errors.Join(lineErrs...)
}
func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}
