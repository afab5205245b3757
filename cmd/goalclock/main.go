package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/internal/processor"
	"github.com/richard-senior/goalclock/pkg/goals"
)

func main() {
	// Parse command line flags
	over := flag.Float64("over", 0, "Decimal odds for over the line, eg 2.10")
	under := flag.Float64("under", 0, "Decimal odds for under the line, eg 1.75")
	line := flag.Float64("line", 0, "Goals line (default from config, normally 2.5)")
	maxGoals := flag.Int("max-goals", 0, "Number of goals to project (default from config, normally 3)")
	format := flag.String("format", "", "Output format: text, json, markdown or html (default text)")
	configFile := flag.String("config", "", "YAML settings file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	inputFile := flag.String("input", "", "JSON or YAML request file, - for stdin")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
	flag.Parse()

	// Configure logging, stdout is for the result
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logger.WARN)
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	settings, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	var request processor.Request
	if *inputFile != "" {
		var input []byte
		if *inputFile == "-" {
			input, err = io.ReadAll(os.Stdin)
		} else {
			input, err = os.ReadFile(*inputFile)
		}
		if err != nil {
			logger.Fatal("Failed to read input", err)
		}
		if request, err = processor.ParseRequest(input); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	// flags given explicitly override the request file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "over":
			request.OverOdds = *over
		case "under":
			request.UnderOdds = *under
		case "line":
			request.Line = *line
		case "max-goals":
			request.MaxGoals = *maxGoals
		case "format":
			request.Format = *format
		}
	})

	if *inputFile == "" && (request.OverOdds == 0 || request.UnderOdds == 0) {
		fmt.Fprintln(os.Stderr, "Usage: goalclock -over 2.10 -under 1.75 [-line 2.5] [-max-goals 3] [-format text|json|markdown|html]")
		fmt.Fprintln(os.Stderr, "       goalclock -input request.json")
		os.Exit(2)
	}

	result, err := processor.Execute(settings, request)
	if err != nil {
		var reqErr *processor.RequestError
		if errors.As(err, &reqErr) && request.Format == "json" {
			// json callers get the error body on stdout as well
			os.Stdout.Write(result)
		}
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}

	// Determine output destination
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, result, 0644); err != nil {
			logger.Fatal("Failed to write to output file", err)
		}
		return
	}
	fmt.Print(string(result))
}

func describe(err error) string {
	if errors.Is(err, goals.ErrInvalidOdds) {
		return fmt.Sprintf("%v (decimal odds must be at least %.2f)", err, goals.MinOdds)
	}
	return err.Error()
}
