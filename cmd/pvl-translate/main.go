// Command pvl-translate reads a label under one of the recognized PVL
// dialects and re-emits it under another, or as a JSON debug dump.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/nrivard/pvl"
	"github.com/nrivard/pvl/cliutil"
	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/output"
	"github.com/nrivard/pvl/perrors"
)

var (
	// Version is set via ldflags when building.
	Version = ""
)

type translateCmd struct {
	File   cliutil.FileOrStdin `arg:"" help:"Label file to translate, or - for stdin."`
	Output string              `short:"o" help:"Write to this path instead of stdout." type:"path"`
	Format string              `short:"f" enum:"pvl,odl,pds3,isis,tree,json" default:"pvl" help:"Output dialect, or 'tree'/'json' for a debug dump."`
}

func (cmd *translateCmd) Run() error {
	data, err := cmd.File.ReadAll()
	if err != nil {
		return err
	}

	m, err := pvl.LoadBytes(data, pvl.WithDialect(grammar.Omni))
	if err != nil {
		formatter := perrors.NewTextFormatter(data)
		return fmt.Errorf("%s: %s", cmd.File.DisplayPath(), formatter.Format(err))
	}

	var out []byte
	switch cmd.Format {
	case "tree":
		if cmd.Output == "" && cliutil.IsOutputTerminal(os.Stdout) {
			printStyledTree(os.Stdout, &m.Container, output.NewStyles(os.Stdout), 0)
			return nil
		}
		out = []byte(repr.String(m, repr.Indent("  ")) + "\n")
	case "json":
		encoded, err := json.MarshalIndent(toJSON(&m.Container), "", "  ")
		if err != nil {
			return fmt.Errorf("pvl-translate: encode json: %w", err)
		}
		out = append(encoded, '\n')
	default:
		text, err := pvl.Dumps(m, pvl.WithDialect(dialectFor(cmd.Format)))
		if err != nil {
			return err
		}
		out = []byte(text)
	}

	return cmd.write(out)
}

func (cmd *translateCmd) write(out []byte) error {
	if cmd.Output == "" {
		_, err := os.Stdout.Write(out)
		return err
	}

	if _, err := os.Stat(cmd.Output); err == nil {
		overwrite, err := cliutil.PromptYesNo(fmt.Sprintf("%s already exists. Overwrite?", cmd.Output))
		if err != nil {
			return err
		}
		if !overwrite {
			cliutil.PrintInfof(os.Stderr, "skipped %s", cmd.Output)
			return nil
		}
	}

	if err := os.WriteFile(cmd.Output, out, 0o644); err != nil {
		return err
	}
	cliutil.PrintSuccess(os.Stderr, fmt.Sprintf("wrote %s", cmd.Output))
	return nil
}

func dialectFor(format string) grammar.Dialect {
	switch format {
	case "odl":
		return grammar.ODL
	case "pds3":
		return grammar.PDS3
	case "isis":
		return grammar.ISIS
	default:
		return grammar.PVL
	}
}

// printStyledTree writes an indented, ANSI-styled rendering of c to w: a
// block's kind and name are styled as keyword/parameter, a scalar's key and
// decoded text as parameter/value. It's the interactive-terminal
// counterpart to the "tree" format's plain repr.String dump.
func printStyledTree(w io.Writer, c *label.Container, styles *output.Styles, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, it := range c.Slice(0, c.Len()) {
		if block, ok := it.Value.(label.Block); ok {
			fmt.Fprintf(w, "%s%s %s\n", indent, styles.Keyword(block.AggKind.String()), styles.Parameter(block.Name))
			printStyledTree(w, &block.Container, styles, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s%s = %s\n", indent, styles.Parameter(it.Key), styles.Value(it.Value.GoString()))
	}
}

// toJSON converts a label tree into a JSON-marshalable shape. This lives
// entirely in the CLI: the core label/encoder packages never produce JSON.
func toJSON(c *label.Container) map[string]any {
	items := make([]map[string]any, 0, c.Len())
	for _, it := range c.Slice(0, c.Len()) {
		items = append(items, map[string]any{
			"key":   it.Key,
			"value": valueToJSON(it.Value),
		})
	}
	return map[string]any{"items": items}
}

func valueToJSON(v label.Value) any {
	if block, ok := v.(label.Block); ok {
		node := toJSON(&block.Container)
		node["kind"] = block.AggKind.String()
		node["name"] = block.Name
		return node
	}

	switch val := v.(type) {
	case label.Sequence:
		elems := make([]any, len(val.Elements))
		for i, el := range val.Elements {
			elems[i] = valueToJSON(el)
		}
		return map[string]any{"kind": "Sequence", "elements": elems}
	case label.Set:
		elems := make([]any, len(val.Elements))
		for i, el := range val.Elements {
			elems[i] = valueToJSON(el)
		}
		return map[string]any{"kind": "Set", "elements": elems}
	case label.Quantity:
		return map[string]any{"kind": "Quantity", "value": valueToJSON(val.Value), "units": val.Units}
	default:
		return map[string]any{"kind": v.Kind().String(), "text": v.GoString()}
	}
}

var cli struct {
	Version kong.VersionFlag `help:"Show version information."`
	translateCmd
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{"version": buildVersion()},
		kong.Name("pvl-translate"),
		kong.Description("Translate a PVL-family label between dialects."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func buildVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
