// Command pvl-validate reports, per file and per dialect, whether a label
// loads and whether it can be re-encoded under that dialect's rules.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/nrivard/pvl"
	"github.com/nrivard/pvl/cliutil"
	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/output"
	"github.com/nrivard/pvl/parser"
	"github.com/nrivard/pvl/perrors"
	"github.com/nrivard/pvl/preamble"
	"github.com/nrivard/pvl/telemetry"
)

var dialects = []grammar.Dialect{grammar.PVL, grammar.ODL, grammar.PDS3, grammar.ISIS}

type validateCmd struct {
	Paths   []string `arg:"" help:"Label files to validate." type:"existingfile"`
	Verbose int      `short:"v" type:"counter" help:"-v: show error messages, -vv: show extent size and timing."`
	Watch   bool     `help:"Re-run validation whenever a watched file changes."`
	Workers int      `default:"4" help:"Maximum concurrent files validated at once."`
}

func (cmd *validateCmd) Run() error {
	if !cmd.Watch {
		return cmd.runOnce()
	}
	return cmd.runWatch()
}

func (cmd *validateCmd) runOnce() error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(cmd.Workers)

	var styles *output.Styles
	if cliutil.IsOutputTerminal(os.Stdout) {
		styles = output.NewStyles(os.Stdout)
	}

	results := make([][]string, len(cmd.Paths))
	for i, path := range cmd.Paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = cmd.validateFile(path, styles)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rows := range results {
		for _, row := range rows {
			fmt.Println(row)
		}
	}
	return nil
}

// validateFile runs every dialect against path and returns one formatted
// row per dialect. It never returns an error itself; a file that can't even
// be read is reported as a failing row for every dialect instead of
// aborting the whole run. styles is nil when stdout isn't a terminal, in
// which case every row is plain text.
func (cmd *validateCmd) validateFile(path string, styles *output.Styles) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		rows := make([]string, 0, len(dialects))
		for _, d := range dialects {
			rows = append(rows, fmt.Sprintf("%s [%s]: does NOT load, does NOT encode: %s", path, d, err))
		}
		return rows
	}

	rows := make([]string, 0, len(dialects))
	for _, d := range dialects {
		rows = append(rows, cmd.validateDialect(path, data, d, styles))
	}
	return rows
}

func (cmd *validateCmd) validateDialect(path string, data []byte, d grammar.Dialect, styles *output.Styles) string {
	var buf bytes.Buffer
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	m, err := pvl.Load(bytes.NewReader(data), pvl.WithDialect(d), pvl.WithTelemetry(ctx))
	loadVerdict := "Loads"
	if err != nil {
		loadVerdict = "does NOT load"
	}

	encodeVerdict := "Encodes"
	if err == nil {
		if _, encErr := pvl.Dump(m, &buf, pvl.WithDialect(d), pvl.WithTelemetry(ctx)); encErr != nil {
			encodeVerdict = "does NOT encode"
			err = encErr
		}
	} else {
		encodeVerdict = "does NOT encode"
	}

	displayPath := path
	displayLoad := loadVerdict
	displayEncode := encodeVerdict
	if styles != nil {
		displayPath = styles.FilePath(path)
		displayLoad = verdictStyle(styles, loadVerdict, "Loads")
		displayEncode = verdictStyle(styles, encodeVerdict, "Encodes")
	}
	line := fmt.Sprintf("%s [%s]: %s, %s", displayPath, d, displayLoad, displayEncode)

	if cmd.Verbose >= 1 && err != nil {
		formatter := perrors.NewTextFormatter(data)
		msg := formatter.Format(err)
		if styles != nil {
			msg = styles.Error(msg)
		}
		line += "\n  " + msg
	}
	if cmd.Verbose >= 1 && err == nil {
		if dups := parser.DuplicateKeys(&m.Container); len(dups) > 0 {
			msg := fmt.Sprintf("duplicate keys: %s", strings.Join(dups, ", "))
			if styles != nil {
				msg = styles.Warning(msg)
			}
			line += "\n  " + msg
		}
	}
	if cmd.Verbose >= 2 {
		extent := preamble.Extent(data, path, grammar.OmniGrammar())
		line += fmt.Sprintf("\n  extent: %s", humanize.Bytes(uint64(len(extent))))
		var timing bytes.Buffer
		var reportStyles interface{}
		if styles != nil {
			reportStyles = styles
		}
		collector.Report(&timing, reportStyles)
		if timing.Len() > 0 {
			line += "\n  " + timing.String()
		}
	}
	return line
}

// verdictStyle colors a verdict green when it matches the successful form
// (e.g. "Loads"), red otherwise (e.g. "does NOT load").
func verdictStyle(styles *output.Styles, verdict, successForm string) string {
	if verdict == successForm {
		return styles.Success(verdict)
	}
	return styles.Error(verdict)
}

// runWatch re-validates every path each time fsnotify reports it changed,
// until interrupted. This is a dev-loop convenience external to the core
// load/dump contract.
func (cmd *validateCmd) runWatch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pvl-validate: create watcher: %w", err)
	}
	defer watcher.Close()

	for _, path := range cmd.Paths {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("pvl-validate: watch %s: %w", path, err)
		}
	}

	if err := cmd.runOnce(); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for {
		select {
		case <-sigCtx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cliutil.PrintInfof(os.Stderr, "%s changed, re-validating", event.Name)
			if err := cmd.runOnce(); err != nil {
				cliutil.PrintError(os.Stderr, err.Error())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cliutil.PrintError(os.Stderr, err.Error())
		}
	}
}

var cli struct {
	Version kong.VersionFlag `help:"Show version information."`
	validateCmd
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{"version": "dev"},
		kong.Name("pvl-validate"),
		kong.Description("Validate PVL-family labels against every known dialect."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
