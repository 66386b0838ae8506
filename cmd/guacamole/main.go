package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RaxoCoding/guacamole-lang/pkg/guac"

	"github.com/fsnotify/fsnotify"
	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The guacamole interpreter parses, validates and evaluates programs written in
the guacamole language: a small imperative language with C-like syntax, integer
arithmetic, 'if'/'elif'/'else' chains, 'while' loops and 'funk' functions. On
success it prints the value of the last evaluated expression, on failure a
caret-underlined diagnostic pointing at the offending source location.
`, "\n", " ")

var Guacamole = cli.New(Description).
	WithArg(cli.NewArg("input", "The source (.guac) file to be interpreted").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("check", "Parses and validates the program without evaluating it").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("watch", "Re-runs the program every time the source file changes").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	_, check := options["check"]

	if _, enabled := options["watch"]; enabled {
		return Watch(args[0], check)
	}

	return Run(args[0], check)
}

// Run interprets the file once: parse, check and (unless 'check' asks to stop
// there) evaluate, printing the result to stdout or the diagnostic to stderr.
func Run(path string, check bool) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	// Instantiate a parser for the guacamole program
	parser := guac.NewParser(string(content))
	// Parses the input file content and extract an AST from it
	root, err := parser.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}

	// Instantiate a checker to validate the AST before evaluation
	checker := guac.NewChecker(parser.Cursor, guac.NewGlobalScope())
	// Verifies structural invariants, name resolution and control-flow rules
	if err := checker.Check(root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}

	if check {
		fmt.Println("OK")
		return 0
	}

	// Now, instantiates an evaluator over a fresh scope seeded with builtins
	evaluator := guac.NewEvaluator(os.Stdout)
	// Walks the AST and leaves the last expression's value in the register
	result := evaluator.Eval(root, guac.NewGlobalScope())

	fmt.Printf("Result : %d\n", result)
	return 0
}

// Watch runs the file once and then again on every write to it, until the
// process is interrupted.
func Watch(path string, check bool) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Printf("ERROR: Unable to start the file watcher: %s\n", err)
		return -1
	}
	defer watcher.Close()

	// Watching the directory instead of the file keeps the watch alive
	// across editors that replace the file on save.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		fmt.Printf("ERROR: Unable to watch %s: %s\n", path, err)
		return -1
	}

	Run(path, check)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			same, err := filepath.Abs(event.Name)
			target, _ := filepath.Abs(path)
			if err == nil && same == target && event.Op.Has(fsnotify.Write|fsnotify.Create) {
				Run(path, check)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Printf("ERROR: Watcher failure: %s\n", err)
		}
	}
}

func main() { os.Exit(Guacamole.Run(os.Args, os.Stdout)) }
