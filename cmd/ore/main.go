// Command ore runs an Ore source file:
//
//	ore [flags] script.ore
//	ore --eval 'println("hi")'
//
// Exit status is 0 on success and 1 on an uncaught exception, with the
// diagnostic on standard error.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"ore/interp"
	"ore/parser"
)

func main() {
	var (
		evalSource  = pflag.StringP("eval", "e", "", "evaluate an expression instead of a file")
		dumpAST     = pflag.Bool("dump-ast", false, "print the parsed AST and exit")
		configPath  = pflag.String("config", "", "YAML config file")
		gcThreshold = pflag.Int("gc-threshold", 0, "allocations between collections (0 = default)")
		tickLimit   = pflag.Int64("tick-limit", 0, "statement budget (0 = unlimited)")
		showResult  = pflag.Bool("print-result", false, "print the program's result value")
	)
	pflag.Parse()

	cfg := interp.Config{}
	if *configPath != "" {
		loaded, err := interp.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ore: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *gcThreshold > 0 {
		cfg.GCThreshold = *gcThreshold
	}
	if *tickLimit > 0 {
		cfg.TickLimit = *tickLimit
	}

	source := *evalSource
	if source == "" {
		if pflag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: ore [flags] script.ore")
			os.Exit(2)
		}
		data, err := os.ReadFile(pflag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ore: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	}

	prog, err := parser.NewParser(source).ParseProgram()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ore: parse error: %v\n", err)
		os.Exit(1)
	}
	if *dumpAST {
		fmt.Print(parser.Dump(prog))
		return
	}

	ip := interp.New(cfg)
	result, err := ip.Run(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ore: %v\n", err)
		os.Exit(1)
	}
	if *showResult || *evalSource != "" {
		fmt.Println(ip.Heap().Inspect(result))
	}
}
