package main

import (
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/ccirgen/ccirgen/internal/config"
	"github.com/ccirgen/ccirgen/internal/lower"
)

// runREPL steps through a demo's toplevels one at a time against a
// persistent Env (SUPPLEMENTED FEATURES #2): since the tokenizer/parser
// a real C REPL would need is out of scope (spec.md §1), the "input"
// here is selecting which built-in demo to step through rather than
// typing C directly — the incremental lowering itself (one
// `Env.LowerToplevel` call per step, against one long-lived `Env`,
// watching `Unit.Functions`/`Unit.Globals` grow) is the thing this mode
// exercises, matching the teacher's REPL feeding its elaborator one
// form at a time.
func runREPL(target *config.Target) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("%s - incremental demo stepper\n", bold("ccirgen repl"))
	fmt.Println("Type :help for commands, :quit to exit")

	var env *lower.Env
	var cur *demo
	var next int

	for {
		prompt := "ccirgen> "
		if cur != nil {
			prompt = fmt.Sprintf("ccirgen[%s %d/%d]> ", cur.Name, next, len(cur.Toplevels))
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q":
			return

		case input == ":help" || input == ":h":
			fmt.Println("  :list          list demos")
			fmt.Println("  :use <name>    select a demo and reset its Env")
			fmt.Println("  :next          lower the demo's next toplevel")
			fmt.Println("  :dump          print the Env's IR so far")
			fmt.Println("  :quit          exit")

		case input == ":list":
			listDemos()

		case strings.HasPrefix(input, ":use "):
			name := strings.TrimSpace(strings.TrimPrefix(input, ":use "))
			d := findDemo(name)
			if d == nil {
				fmt.Printf("%s: unknown demo %q\n", red("Error"), name)
				continue
			}
			cur = d
			env = lower.NewEnv(target)
			next = 0
			fmt.Printf("%s selected %s (%d toplevel(s))\n", green("✓"), d.Name, len(d.Toplevels))

		case input == ":next":
			if cur == nil {
				fmt.Println("no demo selected — try :use <name>")
				continue
			}
			if next >= len(cur.Toplevels) {
				fmt.Println("demo exhausted")
				continue
			}
			if err := env.LowerToplevel(cur.Toplevels[next]); err != nil {
				printReports(env.Reports)
				continue
			}
			fmt.Printf("%s lowered toplevel %d\n", green("✓"), next)
			next++

		case input == ":dump":
			if env == nil {
				fmt.Println("no demo selected — try :use <name>")
				continue
			}
			for _, fn := range env.Unit.Functions {
				fmt.Print(fn.String())
			}
			for _, g := range env.Unit.Globals {
				fmt.Printf("global %s: %s\n", g.Name, g.Type.String())
			}

		default:
			fmt.Printf("unknown command %q — try :help\n", input)
		}
	}
}
