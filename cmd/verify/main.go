package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"uiverify/internal/cli"
	"uiverify/internal/config"
	"uiverify/internal/engine"
	"uiverify/internal/runner"
	"uiverify/internal/scenario"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "run":
		os.Exit(runCmd(os.Args[2:]))
	case "list":
		listCmd()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("verify usage:")
	fmt.Println("  verify run  <scenario|file.yaml> [--engine playwright|rod] [--headless=false] [--json]")
	fmt.Println("  verify list # list built-in scenarios and engines")
}

func runCmd(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	eng := fs.String("engine", "", "Browser engine (default from VERIFY_ENGINE)")
	headless := fs.Bool("headless", true, "Headless mode")
	asJSON := fs.Bool("json", false, "Print the run result as JSON")
	fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	ov := cli.Overrides{Engine: *eng}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			ov.Headless = headless
		}
	})
	h, err := cli.NewHarness(cfg, os.Stderr, ov)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		return 1
	}
	sc, err := h.Resolve(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()
	res, runErr := h.Runner.Run(ctx, sc)
	if *asJSON {
		if err := printJSON(os.Stdout, res); err != nil {
			fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
			return 1
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", runErr)
		return runner.ExitCode(runErr)
	}
	if !*asJSON {
		cli.PrintSuccess(os.Stdout, sc, res)
	}
	return 0
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func listCmd() {
	fmt.Println("scenarios:")
	for _, name := range scenario.Names() {
		fmt.Println("  " + name)
	}
	fmt.Println("engines:")
	for _, name := range engine.Names() {
		fmt.Println("  " + name)
	}
}
