// Package main provides a banner entry point for the APEX simulator.
//
// For the full CLI, use: go run ./cmd/apexsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("apexsim - APEX out-of-order pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: apexsim [options] <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -cycles    Maximum number of cycles to simulate")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -v         Print a state trace after every cycle")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apexsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/apexsim' instead.")
	}
}
