// Command ccirgen drives the IR-generation core over a small catalog of
// built-in demonstration translation units (see demos.go) — the
// tokenizer and grammar parser that would otherwise feed it a real
// source file are out-of-scope external collaborators (spec.md §1).
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/creport"
	"github.com/ccirgen/ccirgen/internal/lower"
)

var (
	Version = "dev"
	Commit  = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		targetFlag  = flag.String("target", "", "Path to a target configuration YAML file (default: lp64)")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("ccirgen %s (%s)\n", bold(Version), Commit)
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	target, err := loadTarget(*targetFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	switch cmd := flag.Arg(0); cmd {
	case "list":
		listDemos()
	case "build":
		runDemo(target, flag.Arg(1), modeBuild)
	case "dump-types":
		runDemo(target, flag.Arg(1), modeDumpTypes)
	case "dump-ir":
		runDemo(target, flag.Arg(1), modeDumpIR)
	case "repl":
		runREPL(target)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), cmd)
		printHelp()
		os.Exit(1)
	}
}

func loadTarget(path string) (*config.Target, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func printHelp() {
	fmt.Println(bold("ccirgen") + " - IR generation core for a self-hosting C toolchain")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ccirgen <command> [demo]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s            List the built-in demo translation units\n", cyan("list"))
	fmt.Printf("  %s <demo>     Lower a demo and report success/failure\n", cyan("build"))
	fmt.Printf("  %s <demo>     Lower a demo, print its struct/function types\n", cyan("dump-types"))
	fmt.Printf("  %s <demo>     Lower a demo, print its IR functions\n", cyan("dump-ir"))
	fmt.Printf("  %s             Step through a demo's toplevels interactively\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --target <file>  Load a target configuration YAML file (default: lp64)")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
}

func listDemos() {
	names := make([]string, len(demoCatalog))
	for i, d := range demoCatalog {
		names[i] = d.Name
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
}

type dumpMode int

const (
	modeBuild dumpMode = iota
	modeDumpTypes
	modeDumpIR
)

func runDemo(target *config.Target, name string, mode dumpMode) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "%s: missing demo name (see %s)\n", red("Error"), cyan("ccirgen list"))
		os.Exit(1)
	}
	d := findDemo(name)
	if d == nil {
		fmt.Fprintf(os.Stderr, "%s: unknown demo %q (see %s)\n", red("Error"), name, cyan("ccirgen list"))
		os.Exit(1)
	}

	fmt.Printf("%s %s:\n%s\n\n", cyan("source"), d.Name, d.Source)

	unit, reports := lower.LowerTranslationUnit(target, d.Toplevels)
	if len(reports) > 0 {
		printReports(reports)
		os.Exit(1)
	}

	fmt.Printf("%s lowered %d function(s), %d global(s), %d struct(s)\n",
		green("✓"), len(unit.Functions), len(unit.Globals), len(unit.Structs))

	switch mode {
	case modeDumpTypes:
		fmt.Println()
		fmt.Println(cyan("-- struct types --"))
		for _, st := range unit.Structs {
			fmt.Println(st.String())
		}
		fmt.Println(cyan("-- globals --"))
		for _, g := range unit.Globals {
			fmt.Printf("%s: %s\n", g.Name, g.Type.String())
		}
	case modeDumpIR:
		fmt.Println()
		fmt.Println(cyan("-- functions --"))
		for _, fn := range unit.Functions {
			fmt.Print(fn.String())
		}
	}
}

func printReports(reports []*creport.Report) {
	for _, r := range reports {
		loc := ""
		if r.Span != nil {
			loc = " (" + r.Span.Start.String() + ")"
		}
		fmt.Fprintf(os.Stderr, "%s [%s/%s]%s: %s\n", red("Error"), yellow(r.Phase), r.Code, loc, r.Message)
	}
}

func init() {
	// Keep flag usage text aligned with printHelp rather than the
	// default flag.PrintDefaults dump.
	flag.Usage = printHelp
}
