// Command d3dsmc is the D3D9-shader-to-SPIR-V translator CLI.
//
// Usage:
//
//	d3dsmc [options] <input>
//
// Examples:
//
//	d3dsmc shader.dxbc                   # Translate, SPIR-V to stdout
//	d3dsmc -o shader.spv shader.dxbc     # Translate to SPIR-V
//	d3dsmc -version                      # Print build version
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/d3d9spv/transpiler/transpile"
)

var (
	output       = flag.String("o", "", "output file (default: stdout)")
	numFloatRegs = flag.Uint("float-constants", 224, "number of float4 constant registers the host exposes")
	numIntRegs   = flag.Uint("int-constants", 16, "number of int4 constant registers the host exposes")
	numBoolRegs  = flag.Uint("bool-constants", 16, "number of bool constant registers the host exposes")
	versionFlag  = flag.Bool("version", false, "print version")
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("d3dsmc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	words, err := tokenize(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding token stream: %v\n", err)
		os.Exit(1)
	}

	opts := transpile.Options{
		NumFloatConstants: uint32(*numFloatRegs),
		NumIntConstants:   uint32(*numIntRegs),
		NumBoolConstants:  uint32(*numBoolRegs),
	}
	result, err := transpile.Convert(words, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translation error: %v\n", err)
		os.Exit(1)
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}

	if *output != "" {
		if err := os.WriteFile(*output, result.SPIRV, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully translated %s to %s (%d bytes)\n", inputPath, *output, len(result.SPIRV))
	} else {
		if _, err := os.Stdout.Write(result.SPIRV); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	}
}

// tokenize reinterprets a raw D3D9 bytecode file as its constituent
// little-endian 32-bit tokens (spec.md §6).
func tokenize(raw []byte) ([]uint32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("input length %d is not a multiple of 4", len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return words, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: d3dsmc [options] <input.dxbc>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  d3dsmc shader.dxbc               Translate to stdout\n")
	fmt.Fprintf(os.Stderr, "  d3dsmc -o shader.spv shader.dxbc Translate to file\n")
}
