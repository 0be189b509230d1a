package testcmds

import (
	"bufio"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed testdata/responses
var responses embed.FS

// RegisterTransport serves Discogs responses from testdata. Scripts can
// still point the base url somewhere else, like discogs-empty.
func RegisterTransport() {
	var t http.Transport
	t.RegisterProtocol("file", http.NewFileTransportFS(responses))

	setDefaultEnv("NOFUTURE_DISCOGS_BASE_URL", "file:///testdata/responses/discogs")
	setDefaultEnv("NOFUTURE_DISCOGS_RATE_LIMIT", "0")

	http.DefaultTransport = &t
}

func setDefaultEnv(key, value string) {
	if _, ok := os.LookupEnv(key); ok {
		return
	}
	os.Setenv(key, value)
}

const corruptMarker = "!corrupt"

// FakeExtract "extracts" an archive which is a list of paths, one per line,
// creating each under the dest dir. An empty archive, or one with a line
// that's corruptMarker, fails after writing whatever it could.
func FakeExtract() {
	flag.Parse()

	archive, dest := flag.Arg(0), flag.Arg(1)
	if archive == "" || dest == "" {
		log.Fatalf("bad args")
	}

	f, err := os.Open(archive)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	var n int
	var corrupt bool
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case corruptMarker:
			corrupt = true
			continue
		}
		p := filepath.Join(dest, line)
		if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
			log.Fatalf("mkdirall: %v", err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			log.Fatalf("write: %v", err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("read archive: %v", err)
	}
	if corrupt || n == 0 {
		fmt.Fprintf(os.Stderr, "%s: unexpected end of archive\n", filepath.Base(archive))
		os.Exit(1)
	}
}

func Find() {
	maxDepth := flag.Int("max-depth", -1, "")
	flag.Parse()

	paths := flag.Args()
	sort.Strings(paths)

	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			path = filepath.Clean(path)
			if *maxDepth != -1 && strings.Count(path, string(filepath.Separator)) > *maxDepth {
				return nil
			}
			fmt.Println(path)
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
	}
}

func Touch() {
	flag.Parse()

	for _, p := range flag.Args() {
		if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
			log.Fatalf("mkdirall: %v", err)
		}
		f, err := os.Create(p)
		if err != nil {
			log.Fatalf("err creating: %v", err)
		}
		f.Close()
	}
}
