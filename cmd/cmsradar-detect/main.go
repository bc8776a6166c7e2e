// Command cmsradar-detect detects the CMS behind URLs or local HTML and prints JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cmsradar/internal/adapters/fetch"
	"cmsradar/internal/core/fingerprint"
	"cmsradar/internal/platform/config"
	"cmsradar/internal/platform/logger"
	"cmsradar/internal/services/detect/domain"
	"cmsradar/internal/services/detect/service"
)

// exit codes
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	maxHTMLSize = 10 << 20
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	if os.Getenv("LOG_LEVEL") == "" {
		opt.Level = "warn"
	}
	logger.Init(opt)

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without process globals
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cmsradar-detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		urls    = fs.String("url", "", "comma separated URLs to fetch and detect")
		file    = fs.String("file", "", "HTML file to detect, - reads stdin")
		workers = fs.Int("workers", 4, "concurrent fetches for several URLs (>=1)")
		all     = fs.Bool("all", false, "print the score of every platform")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	targets := splitURLs(*urls)
	switch {
	case len(targets) == 0 && *file == "":
		fmt.Fprintln(stderr, "one of -url or -file is required")
		fs.Usage()
		return exitUsage
	case len(targets) > 0 && *file != "":
		fmt.Fprintln(stderr, "-url and -file are mutually exclusive")
		return exitUsage
	case *workers < 1:
		fmt.Fprintln(stderr, "-workers must be at least 1")
		return exitUsage
	case fs.NArg() > 0:
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}

	svc := service.New(
		fingerprint.New(fingerprint.MustLoad()),
		domain.Ports{Fetcher: fetch.NewClient(fetch.FromConfig(config.New()))},
		nil,
		service.Config{Workers: *workers, MaxBatch: max(len(targets), 1), IncludeScores: *all},
	)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if *file != "" {
		html, err := readHTML(*file, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "read %s: %v\n", *file, err)
			return exitFailed
		}
		d, err := svc.DetectHTML(ctx, domain.DetectHTMLInput{HTML: html})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailed
		}
		_ = enc.Encode(d)
		return exitOK
	}

	if len(targets) == 1 {
		d, err := svc.DetectURL(ctx, domain.DetectURLInput{URL: targets[0]})
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", targets[0], err)
			return exitFailed
		}
		_ = enc.Encode(d)
		return exitOK
	}

	res, err := svc.DetectBatch(ctx, domain.DetectBatchInput{URLs: targets})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	_ = enc.Encode(res)
	if res.Failed > 0 {
		return exitFailed
	}
	return exitOK
}

func splitURLs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readHTML(path string, stdin io.Reader) (string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxHTMLSize+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxHTMLSize {
		return "", errors.New("file is larger than 10 MiB")
	}
	return string(raw), nil
}
