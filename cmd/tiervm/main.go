// Command tiervm assembles and runs tiervm programs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/tiervm/tiervm/asm"
	"github.com/tiervm/tiervm/bytecode"
	"github.com/tiervm/tiervm/dis"
	"github.com/tiervm/tiervm/vm"
)

func main() {
	var (
		threshold = flag.Int("threshold", vm.DefaultHotspotThreshold,
			"execution count at which an address becomes hot")
		maxScan = flag.Int("max-scan", vm.DefaultMaxScan,
			"maximum instructions scanned for a region")
		minRegion = flag.Int("min-region", vm.DefaultMinRegionLen,
			"minimum admissible region length")
		budget    = flag.Int64("max-instructions", 0, "instruction budget (0 = unlimited)")
		showDis   = flag.Bool("dis", false, "print the disassembly and exit")
		profile   = flag.Bool("profile", false, "print an execution profile after the run")
		debugLog  = flag.Bool("debug", false, "log specialization events to stderr")
		traceExec = flag.Bool("trace", false, "log every instruction to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: tiervm [flags] program.tvm\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fatal(err)
	}
	program, err := asm.Assemble(string(source))
	if err != nil {
		fatal(err)
	}
	if *showDis {
		dis.Print(program, os.Stdout)
		return
	}

	logger := zerolog.Nop()
	if *debugLog || *traceExec {
		level := zerolog.DebugLevel
		if *traceExec {
			level = zerolog.TraceLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	}

	m := vm.New(
		vm.WithHotspotThreshold(*threshold),
		vm.WithMaxScan(*maxScan),
		vm.WithMinRegionLen(*minRegion),
		vm.WithMaxInstructions(*budget),
		vm.WithLogger(logger),
	)
	if err := m.Load(program); err != nil {
		fatal(err)
	}
	if err := m.Run(context.Background()); err != nil {
		fatal(err)
	}
	if *profile {
		printProfile(m, program)
	}
}

func printProfile(m *vm.Machine, program []bytecode.Instruction) {
	stats := m.Stats()
	header := color.New(color.Bold)
	header.Println("Execution profile")
	fmt.Println("==================================================")
	fmt.Printf("Instructions executed: %d\n", stats.InstructionsExecuted)
	fmt.Printf("Regions compiled:      %d\n", stats.RegionsCompiled)
	if len(stats.HotAddresses) == 0 {
		return
	}
	fmt.Println()
	header.Println("Top hotspots")
	fmt.Printf("%-6s %-8s %s\n", "PC", "Count", "Instruction")
	fmt.Println("--------------------------------------------------")
	for _, hot := range stats.HotAddresses {
		text := ""
		if hot.Address < len(program) {
			text = program[hot.Address].String()
		}
		fmt.Printf("%-6d %-8d %s\n", hot.Address, hot.Count, text)
	}
}

func fatal(err error) {
	msg := err.Error()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		msg = color.RedString(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
