// Command bilctl is a thin demonstration CLI over pkg/il and pkg/callconv:
// it has no loader or lifter of its own, so render, roundtrip and stats
// operate on a small built-in sample Program, and callconv prints a
// convention's built-in tables.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/oisee/bil/pkg/callconv"
	"github.com/oisee/bil/pkg/il"
	"github.com/spf13/cobra"
)

// streamErr is where progress lines go; a var so stats.go's ticker goroutine
// can write to it without threading a writer through every call.
var streamErr io.Writer = os.Stderr

func main() {
	rootCmd := &cobra.Command{
		Use:   "bilctl",
		Short: "bil — a binary-program intermediate language core",
	}

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newRoundtripCmd())
	rootCmd.AddCommand(newCallconvCmd())
	rootCmd.AddCommand(newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bilctl:", err)
		os.Exit(1)
	}
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the built-in sample program as text IL",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := buildSampleProgram()
			if err != nil {
				return err
			}
			for _, fn := range prog.Functions() {
				fmt.Printf("%s\n", fn)
				fmt.Print(fn.ControlFlowGraph())
				fmt.Println()
			}
			return nil
		},
	}
}

func newRoundtripCmd() *cobra.Command {
	var path string
	var useGob bool

	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Serialize the sample program and load it back",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := buildSampleProgram()
			if err != nil {
				return err
			}

			if useGob {
				if err := il.SaveProgram(path, prog); err != nil {
					return err
				}
				loaded, err := il.LoadProgram(path)
				if err != nil {
					return err
				}
				fmt.Printf("gob round trip ok: %d functions loaded from %s\n", loaded.Len(), path)
				return nil
			}

			data, err := prog.MarshalJSON()
			if err != nil {
				return err
			}
			if path != "" {
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("wrote JSON encoding to %s (%d bytes)\n", path, len(data))
			} else {
				fmt.Println(string(data))
			}

			var loaded il.Program
			if err := loaded.UnmarshalJSON(data); err != nil {
				return err
			}
			fmt.Printf("JSON round trip ok: %d functions\n", loaded.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "output", "", "File path to write the encoding to (stdout if empty, required for --gob)")
	cmd.Flags().BoolVar(&useGob, "gob", false, "Use the gob checkpoint format instead of JSON")
	return cmd
}

func newCallconvCmd() *cobra.Command {
	var typName string
	cmd := &cobra.Command{
		Use:   "callconv",
		Short: "Print the registers and classification tables for a calling convention",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseCallconvType(typName)
			if err != nil {
				return err
			}
			cc := callconv.New(typ)

			fmt.Printf("Calling convention: %s\n", typ)
			fmt.Printf("  Argument registers: %v\n", cc.ArgumentRegisters())
			fmt.Printf("  Stack argument offset: %d bytes, length: %d bytes\n",
				cc.StackArgumentOffset(), cc.StackArgumentLength())
			fmt.Printf("  Return register: %s\n", cc.ReturnRegister())
			switch ra := cc.ReturnAddressType().(type) {
			case callconv.ReturnAddressRegister:
				fmt.Printf("  Return address: register %s\n", ra.Register)
			case callconv.ReturnAddressStack:
				fmt.Printf("  Return address: stack offset %d\n", ra.Offset)
			}
			fmt.Printf("  Preserved registers: %v\n", cc.PreservedRegisters())
			fmt.Printf("  Trashed registers: %v\n", cc.TrashedRegisters())

			for i := 0; i < 6; i++ {
				switch at := cc.ArgumentType(i).(type) {
				case callconv.ArgumentRegister:
					fmt.Printf("  arg[%d]: register %s\n", i, at.Register)
				case callconv.ArgumentStack:
					fmt.Printf("  arg[%d]: stack offset %d\n", i, at.Offset)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typName, "type", "cdecl", "Calling convention: cdecl, mips-system-v, or mipsel-system-v")
	return cmd
}

func parseCallconvType(name string) (callconv.Type, error) {
	switch name {
	case "cdecl":
		return callconv.Cdecl, nil
	case "mips-system-v":
		return callconv.MipsSystemV, nil
	case "mipsel-system-v":
		return callconv.MipselSystemV, nil
	default:
		return 0, fmt.Errorf("unknown calling convention %q", name)
	}
}

func newStatsCmd() *cobra.Command {
	var numWorkers int
	var verbose bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Walk the sample program's functions in parallel and report per-function tallies",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := buildSampleProgram()
			if err != nil {
				return err
			}
			pool := newStatsPool(numWorkers)
			results := pool.run(prog, verbose)

			var totalBlocks, totalInstrs, totalExprs int
			for _, fs := range results {
				totalBlocks += fs.blocks
				totalInstrs += fs.instructions
				totalExprs += fs.expressions
			}
			fmt.Printf("%d functions, %d blocks, %d instructions, %d expressions walked\n",
				len(results), totalBlocks, totalInstrs, totalExprs)
			return nil
		},
	}
	cmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-function tallies")
	return cmd
}
