// accesslog aggregates a CSV access log per local day and path and prints
// the busiest paths of each day as JSON.
//
//	accesslog --file=access.csv --from=2025-01-01 --to=2025-01-31 --tz=jst --top=3
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/iliyamo/cinema-admission/internal/accesslog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var filePath string
	var opt accesslog.Options

	flagSet := pflag.NewFlagSet("accesslog", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "path to the CSV access log (required)")
	flagSet.StringVar(&opt.From, "from", "1970-01-01", "first UTC date to include (YYYY-MM-DD)")
	flagSet.StringVar(&opt.To, "to", "2100-12-31", "last UTC date to include (YYYY-MM-DD)")
	flagSet.StringVar(&opt.TZ, "tz", "jst", "zone used to bucket days (jst or ict)")
	flagSet.IntVar(&opt.Top, "top", 5, "paths to keep per day")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if filePath == "" {
		return errors.New("--file is required")
	}

	lines, err := readLines(filePath)
	if err != nil {
		return err
	}
	entries, err := accesslog.Aggregate(lines, opt)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(entries)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
