// Command apexsim runs the APEX out-of-order pipeline simulator over an
// assembly listing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/apexsim/apex/core/asm"
	"github.com/apexsim/apex/core/driver"
)

var (
	cycles     = flag.Uint64("cycles", 10000, "Maximum number of cycles to simulate")
	verbose    = flag.Bool("v", false, "Print a state trace after every cycle")
	configPath = flag.String("config", "", "Path to a timing configuration JSON file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: apexsim [options] <program.asm>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	programPath := flag.Arg(0)

	prog, err := asm.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	cfg := driver.DefaultConfig()
	if *configPath != "" {
		cfg, err = driver.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	pipe := driver.New(prog, driver.WithConfig(cfg))

	if *verbose {
		runVerbose(pipe)
	} else {
		pipe.Run(*cycles)
	}

	if !pipe.Halted() {
		fmt.Fprintf(os.Stderr, "simulation stopped after %d cycles without retiring HALT\n", *cycles)
	}

	stats := pipe.Stats()
	fmt.Printf("\nProgram: %s\n", programPath)
	fmt.Printf("Cycles: %d\n", stats.Cycles)
	fmt.Printf("Retired: %d\n", stats.Retired)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("Stalls: %d  Flushes: %d  Issued: %d\n", stats.Stalls, stats.Flushes, stats.Issued)
	pipe.DumpState(os.Stdout)
}

func runVerbose(pipe *driver.Pipeline) {
	for i := uint64(0); i < *cycles && !pipe.Halted(); i++ {
		pipe.Tick()
		fmt.Printf("--- cycle %d ---\n", i+1)
		pipe.DumpState(os.Stdout)
	}
}
