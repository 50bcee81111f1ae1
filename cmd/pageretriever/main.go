// Command pageretriever prints the content of one or more wiki or local pages.
//
//	pageretriever [--config file] [--source api|local] [--mode raw|render] PAGE...
//
// Pages are printed in order, each followed by a newline. The exit status is 1
// when any page came back empty.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/goforj/pageretriever/internal/bootstrap"
	"github.com/goforj/pageretriever/internal/config"
)

const (
	exitOK       = 0
	exitEmpty    = 1
	exitUsage    = 2
	exitSetupErr = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("pageretriever", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.String("config", "", "path to a YAML config file")
	flags.String("source", config.SourceAPI, "page source: api or local")
	flags.String("mode", "render", "api retrieval mode: raw or render")
	flags.String("prefix", "", "page title prefix for the api source")
	flags.String("endpoint", "", "MediaWiki api.php URL")
	flags.String("root", "", "directory for the local source")
	flags.String("cache", "memory", "cache driver")
	flags.String("log-level", "info", "log level")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: pageretriever [flags] PAGE...")
		flags.PrintDefaults()
	}
	return flags
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := newFlagSet(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	pages := flags.Args()
	if len(pages) == 0 {
		flags.Usage()
		return exitUsage
	}

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, flags)
	if err != nil {
		fmt.Fprintln(stderr, "pageretriever:", err)
		return exitSetupErr
	}

	app, err := bootstrap.New(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "pageretriever:", err)
		return exitSetupErr
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Log.Warn().Err(err).Msg("closing page cache")
		}
	}()

	code := exitOK
	for _, page := range pages {
		if ctx.Err() != nil {
			return exitEmpty
		}
		content := app.Retriever.FetchPage(ctx, page)
		if content == "" {
			code = exitEmpty
		}
		fmt.Fprintln(stdout, content)
	}
	return code
}
