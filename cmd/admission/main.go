// admission reads ticket requests, one per line, and prints the admission
// decision for the batch: a price per line when everyone is admitted,
// otherwise the rejection reasons of the refused tickets.
//
//	admission [--file PATH] [--locale en|ja] < requests.txt
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/iliyamo/cinema-admission/internal/admission"
	"github.com/iliyamo/cinema-admission/internal/config"
)

func main() {
	if err := run(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()

	var filePath, locale string
	flagSet := pflag.NewFlagSet("admission", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "read requests from this file instead of stdin")
	flagSet.StringVar(&locale, "locale", defaultLocale(), "message catalog (en or ja)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	in := io.Reader(os.Stdin)
	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	} else if isTerminal(os.Stdin) {
		color.New(color.FgCyan).Fprintln(os.Stderr, "paste requests (Age,Rating,HH:MM,HH:MM,Row-Col), then Ctrl-D")
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	out := admission.Solve(string(raw), admission.CatalogFor(locale))
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(os.Stdout, out)
	return err
}

func defaultLocale() string {
	if v := os.Getenv("ADMISSION_LOCALE"); v != "" {
		return v
	}
	return "en"
}

func isTerminal(f *os.File) bool {
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}
