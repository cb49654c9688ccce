package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/queryforce/soqlkit/pkg/analyze"
	"github.com/queryforce/soqlkit/pkg/complete"
	"github.com/queryforce/soqlkit/pkg/format"
	"github.com/queryforce/soqlkit/pkg/lint"
	"github.com/queryforce/soqlkit/pkg/metadata"
	"github.com/queryforce/soqlkit/pkg/parse"
	"github.com/queryforce/soqlkit/pkg/splice"
)

func main() {
	app := &cli.App{
		Name:    "soqlkit",
		Usage:   "SOQL parser, linter, formatter, and completion engine",
		Version: "0.1.0",
		Commands: []*cli.Command{
			lintCmd(),
			formatCmd(),
			parseCmd(),
			completeCmd(),
			spliceCmd(),
			replCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func lintCmd() *cli.Command {
	return &cli.Command{
		Name:    "lint",
		Aliases: []string{"l", "check"},
		Usage:   "Validate SOQL syntax, optionally against org metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read SOQL from file",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Also validate fields and objects against a catalog file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only output errors, no success message",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the full result as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}

			if c.String("catalog") != "" {
				return lintWithCatalog(c, input)
			}

			result := lint.Analyze(input)
			if c.Bool("json") {
				return printJSON(result)
			}

			if !result.IsValid {
				for _, e := range result.Errors {
					fmt.Fprintf(os.Stderr, "%s\n", e.Error())
					if e.Suggestion != "" {
						fmt.Fprintf(os.Stderr, "  suggestion: %s\n", e.Suggestion)
					}
				}
				os.Exit(1)
			}

			if !c.Bool("quiet") {
				fmt.Println("OK")
			}
			return nil
		},
	}
}

func lintWithCatalog(c *cli.Context, input string) error {
	cat, err := metadata.Load(c.String("catalog"))
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	opts := analyze.DefaultOptions()
	opts.Provider = cat
	result, err := analyze.Analyze(c.Context, input, opts)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(result)
	}

	for _, e := range result.SyntaxErrors {
		fmt.Fprintf(os.Stderr, "%s\n", e.Error())
		if e.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  suggestion: %s\n", e.Suggestion)
		}
	}
	for _, e := range result.SchemaErrors {
		fmt.Fprintf(os.Stderr, "%s\n", e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  suggestion: %s\n", e.Suggestion)
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "%s: %s\n", w.Severity, w.Message)
	}

	if result.HasErrors() {
		os.Exit(1)
	}
	if !c.Bool("quiet") {
		fmt.Println("OK")
	}
	return nil
}

func formatCmd() *cli.Command {
	return &cli.Command{
		Name:    "format",
		Aliases: []string{"fmt"},
		Usage:   "Format a SOQL query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read SOQL from file",
			},
			&cli.BoolFlag{
				Name:    "compact",
				Aliases: []string{"c"},
				Usage:   "Output compact single-line format",
			},
			&cli.BoolFlag{
				Name:  "lowercase",
				Usage: "Use lowercase keywords",
			},
			&cli.StringFlag{
				Name:  "indent",
				Value: "    ",
				Usage: "Indentation string (default: 4 spaces)",
			},
			&cli.IntFlag{
				Name:  "width",
				Value: 80,
				Usage: "Wrap field lists at this line width (0 disables)",
			},
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write result back to file (requires -f)",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}

			opts := format.DefaultOptions()
			if c.Bool("compact") {
				opts = format.CompactOptions()
			}
			if c.Bool("lowercase") {
				opts.UppercaseKeywords = false
			}
			opts.IndentString = c.String("indent")
			opts.MaxLineWidth = c.Int("width")

			result := parse.Parse(input)
			if result.HasErrors() {
				for _, e := range result.Errors {
					fmt.Fprintf(os.Stderr, "%s\n", e.Error())
				}
				return fmt.Errorf("cannot format invalid SOQL")
			}

			output := format.Format(result, opts)

			if c.Bool("write") && c.String("file") != "" {
				return os.WriteFile(c.String("file"), []byte(output+"\n"), 0644)
			}

			fmt.Println(output)
			return nil
		},
	}
}

func parseCmd() *cli.Command {
	return &cli.Command{
		Name:    "parse",
		Aliases: []string{"p"},
		Usage:   "Parse a SOQL query and report its structure",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read SOQL from file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the AST as JSON",
			},
			&cli.BoolFlag{
				Name:  "refs",
				Usage: "Output extracted references (objects, fields, functions) as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}

			if c.Bool("refs") {
				refs, errs := analyze.ExtractReferences(input)
				if errs.HasErrors() {
					for _, e := range errs {
						fmt.Fprintf(os.Stderr, "%s\n", e.Error())
					}
				}
				return printJSON(refs)
			}

			result := parse.Parse(input)
			if c.Bool("json") {
				return printJSON(result)
			}

			fmt.Printf("Valid: %v\n", result.IsValid())
			if result.AST != nil {
				fmt.Printf("SObject: %s\n", result.AST.SObject())
				fmt.Printf("Depth: %d\n", result.AST.Depth())
				fmt.Printf("Fields: %d\n", len(result.AST.Select))
			}
			if result.Errors.HasErrors() {
				fmt.Printf("Errors:\n")
				for _, e := range result.Errors {
					fmt.Printf("  - %s\n", e.Error())
				}
			}
			return nil
		},
	}
}

func completeCmd() *cli.Command {
	return &cli.Command{
		Name:    "complete",
		Aliases: []string{"c"},
		Usage:   "Suggest completions at a cursor offset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read SOQL from file",
			},
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Value:   -1,
				Usage:   "Cursor byte offset (default: end of input)",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Metadata catalog file (JSON or YAML); defaults to the built-in sample",
			},
			&cli.IntFlag{
				Name:  "max",
				Value: 10,
				Usage: "Maximum suggestions to show (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output suggestions as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}

			offset := c.Int("offset")
			if offset < 0 || offset > len(input) {
				input = strings.TrimRight(input, " \t\r\n")
				offset = len(input)
			}

			cat, err := loadCatalog(c)
			if err != nil {
				return err
			}

			opts := complete.DefaultOptions()
			opts.MaxItems = c.Int("max")

			items, err := complete.Suggest(c.Context, cat, complete.Request{
				Text:    input,
				Offset:  offset,
				Options: opts,
			})
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(items)
			}

			for _, s := range items {
				line := fmt.Sprintf("%-28s %s", s.Label, s.Kind)
				if s.Detail != "" {
					line += "  " + s.Detail
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func spliceCmd() *cli.Command {
	return &cli.Command{
		Name:  "splice",
		Usage: "Insert a dropped field or relationship subquery into a query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read SOQL from file",
			},
			&cli.StringFlag{
				Name:  "field",
				Usage: "Field API name to append (Name, Owner.Name)",
			},
			&cli.StringFlag{
				Name:    "relationship",
				Aliases: []string{"rel"},
				Usage:   "Child relationship name to splice as a subquery",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Target scope: FROM object, alias, or relationship name (default: outer query)",
			},
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write result back to file (requires -f)",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}
			input = strings.TrimRight(input, "\r\n")

			field := c.String("field")
			rel := c.String("relationship")
			if (field == "") == (rel == "") {
				return fmt.Errorf("exactly one of --field or --relationship is required")
			}

			var output string
			if field != "" {
				output, err = splice.FieldInto(input, c.String("scope"), &metadata.FieldDescriptor{Name: field})
			} else {
				output, err = splice.RelationshipInto(input, c.String("scope"), &metadata.RelationshipDescriptor{Name: rel})
			}
			if err != nil {
				return err
			}

			if c.Bool("write") && c.String("file") != "" {
				return os.WriteFile(c.String("file"), []byte(output+"\n"), 0644)
			}

			fmt.Println(output)
			return nil
		},
	}
}

func replCmd() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive query editor with live completions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Metadata catalog file (JSON or YAML); defaults to the built-in sample",
			},
		},
		Action: func(c *cli.Context) error {
			cat, err := loadCatalog(c)
			if err != nil {
				return err
			}
			return runREPL(cat)
		},
	}
}

// loadCatalog reads the catalog named by --catalog, falling back to the
// built-in sample so completion works out of the box.
func loadCatalog(c *cli.Context) (*metadata.Catalog, error) {
	if path := c.String("catalog"); path != "" {
		cat, err := metadata.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		return cat, nil
	}
	return metadata.SampleCatalog(), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func getInput(c *cli.Context) (string, error) {
	// Check for file flag
	if file := c.String("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return string(data), nil
	}

	// Check for positional argument
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	// Check for stdin
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	// Interactive mode - read until empty line or EOF
	fmt.Fprintln(os.Stderr, "Enter SOQL (empty line or Ctrl+D to finish):")
	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.Join(lines, "\n"), nil
}
