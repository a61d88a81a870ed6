// Command peek-complete prints completion candidates for one SQL statement.
//
//	peek-complete -schema schema.yaml 'SELECT u.| FROM users u'
//
// The cursor is marked with '|'; without a marker it sits at the end of the
// input. The statement is read from stdin when no argument is given. Output is
// a table on a terminal and a JSON completion list otherwise.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/damoonrashidi/peek/internal/completion"
	"github.com/damoonrashidi/peek/internal/config"
	"github.com/damoonrashidi/peek/internal/schema"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const caretMarker = "|"

type options struct {
	schemaFile string
	configFile string
	explain    bool
	jsonOutput bool
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.schemaFile, "schema", "", "schema file (YAML or JSON)")
	flag.StringVar(&opts.configFile, "config", "", "read schema_file from this configuration file")
	flag.BoolVar(&opts.explain, "explain", false, "print the classified context and deciding rule to stderr")
	flag.BoolVar(&opts.jsonOutput, "json", false, "always print JSON")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging to stderr")
	flag.Parse()

	pretty := !opts.jsonOutput && term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(opts, flag.Args(), os.Stdin, os.Stdout, os.Stderr, pretty); err != nil {
		fmt.Fprintf(os.Stderr, "peek-complete: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, args []string, stdin io.Reader, stdout, stderr io.Writer, pretty bool) error {
	logger := zap.NewNop()
	if opts.verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	snap, err := loadSchema(opts)
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read statement: %w", err)
		}
		input = strings.TrimSuffix(string(data), "\n")
	}

	text, pos, err := splitCaret(input)
	if err != nil {
		return err
	}

	engine := completion.NewEngine(snap, logger)
	result := engine.Complete(text, pos)

	if opts.explain {
		fmt.Fprintf(stderr, "context: %s\nrule: %s\ndegraded: %v\n", result.Context, result.Rule, result.Degraded)
	}

	if pretty {
		return printTable(stdout, result.List)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.List.Protocol())
}

func loadSchema(opts options) (*schema.Snapshot, error) {
	path := opts.schemaFile
	if path == "" && opts.configFile != "" {
		cfg, err := config.LoadServerConfig(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		path = cfg.SchemaFile
	}
	if path == "" {
		return nil, errors.New("no schema: pass -schema or a -config with schema_file")
	}
	return schema.Load(path)
}

// splitCaret removes the cursor marker from input and returns the 1-based
// position it marked. Without a marker the cursor is at the end.
func splitCaret(input string) (string, completion.Position, error) {
	i := strings.Index(input, caretMarker)
	if i < 0 {
		i = len(input)
	} else if strings.Contains(input[i+1:], caretMarker) {
		return "", completion.Position{}, fmt.Errorf("more than one cursor marker %q in input", caretMarker)
	}

	before := input[:i]
	pos := completion.Position{
		Line:   strings.Count(before, "\n") + 1,
		Column: utf8.RuneCountInString(before[strings.LastIndex(before, "\n")+1:]) + 1,
	}
	return before + strings.Replace(input[i:], caretMarker, "", 1), pos, nil
}

func printTable(w io.Writer, list *completion.List) error {
	writer := tabwriter.NewWriter(w, 2, 2, 1, ' ', 0)
	fmt.Fprintln(writer, "LABEL\tKIND\tDETAIL")
	for _, item := range list.Items {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", item.Label, item.Kind, item.Documentation)
	}
	return writer.Flush()
}
