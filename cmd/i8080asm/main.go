// Command i8080asm is the two-pass 8080/8085 cross-assembler CLI: it reads
// a source file, assembles it, and writes a raw binary image plus an
// optional listing, following spec.md's exit-code contract (§6/§7).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flag"

	"github.com/hallowmantle/i8080asm/asm"
	"github.com/hallowmantle/i8080asm/config"
	"github.com/hallowmantle/i8080asm/image"
	"github.com/hallowmantle/i8080asm/listing"
	"github.com/hallowmantle/i8080asm/tools"
	"github.com/hallowmantle/i8080asm/viewer"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		outPath    = flag.String("o", "", "output binary path (default: source with .bin extension)")
		listPath   = flag.String("l", "", "write a listing to this path")
		configPath = flag.String("c", "", "path to a TOML config file (default: built-in defaults)")
		interact   = flag.Bool("i", false, "open the interactive listing/symbol viewer after assembling")
		lint       = flag.Bool("lint", false, "run the lint pass and print findings")
		doFormat   = flag.Bool("fmt", false, "print a re-formatted rendering of the source and exit (no binary is written)")
		showHelp   = flag.Bool("h", false, "show this help message")
		cpuFlag    = flag.String("cpu", "", "target CPU: 8080 (default) or 8085")
	)
	flag.Usage = printHelp
	flag.Parse()

	if *showHelp {
		printHelp()
		return 0
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "i8080asm: exactly one source file is required")
		flag.Usage()
		return 1
	}
	source := flag.Arg(0)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFrom(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "i8080asm: %v\n", err)
			return 255
		}
		cfg = loaded
	}

	cpu := cfg.Assemble.CPU
	if *cpuFlag != "" {
		cpu = *cpuFlag
	}

	opts := asm.Options{
		CPUMode:            cpu,
		MaxIncludeDepth:    cfg.Assemble.MaxIncludeDepth,
		MaxMacroExpansions: cfg.Assemble.MaxMacroExpansions,
	}

	if *doFormat {
		return runFormat(source, opts)
	}

	result, err := asm.AssembleFile(source, opts)
	if err != nil {
		if fe, ok := err.(*asm.FatalError); ok {
			fmt.Fprintf(os.Stderr, "i8080asm: fatal: %s\n", fe.Error())
			return 255
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "%s\n", w)
	}

	if *lint {
		for _, issue := range tools.Lint(result) {
			fmt.Fprintln(os.Stderr, issue.String())
		}
	}

	if result.AssertFailed {
		return 2
	}

	bin, err := image.FromLines(result.Lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i8080asm: %v\n", err)
		return 255
	}

	dest := *outPath
	if dest == "" {
		dest = defaultOutputPath(source, cfg.Output.DefaultBinExt)
	}
	if err := os.WriteFile(dest, bin.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "i8080asm: %v\n", err)
		return 255
	}

	if *listPath != "" {
		text := listing.Format(result.Lines, result.Knowns)
		if err := os.WriteFile(*listPath, []byte(text), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "i8080asm: %v\n", err)
			return 255
		}
	}

	if *interact {
		v := viewer.New(result)
		if err := v.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "i8080asm: viewer: %v\n", err)
			return 255
		}
	}

	return 0
}

func runFormat(source string, opts asm.Options) int {
	result, err := asm.AssembleFile(source, opts)
	if err != nil {
		if fe, ok := err.(*asm.FatalError); ok {
			fmt.Fprintf(os.Stderr, "i8080asm: fatal: %s\n", fe.Error())
			return 255
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	fmt.Print(tools.Format(result.Lines, *tools.DefaultFormatOptions()))
	return 0
}

// defaultOutputPath replaces source's extension with ext, or appends it if
// source has no extension, per spec §6.
func defaultOutputPath(source, ext string) string {
	trimmed := strings.TrimSuffix(source, filepath.Ext(source))
	return trimmed + ext
}

func printHelp() {
	fmt.Printf(`i8080asm %s

Usage: i8080asm [options] <source-file>

Options:
  -o PATH      output binary path (default: source with .bin extension)
  -l PATH      write a listing to PATH
  -c PATH      load a TOML config file
  -cpu NAME    target CPU: 8080 (default) or 8085
  -i           open the interactive listing/symbol viewer after assembling
  -lint        run the lint pass and print findings to stderr
  -fmt         print a re-formatted rendering of the source and exit
  -h           show this help message

Exit codes: 0 success, 1 assembly error, 2 assertion/reference failure,
255 internal/fatal error.
`, Version)
}
