// admintoken mints an operator access token for the admission audit API.
//
//	JWT_SECRET=... admintoken --sub alice [--role OPERATOR] [--ttl 60]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/iliyamo/cinema-admission/internal/config"
	"github.com/iliyamo/cinema-admission/internal/middleware"
	"github.com/iliyamo/cinema-admission/internal/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	config.LoadDotEnv()

	var subject, role string
	var ttl int
	flagSet := pflag.NewFlagSet("admintoken", pflag.ContinueOnError)
	flagSet.StringVar(&subject, "sub", "", "operator name stored in the sub claim (required)")
	flagSet.StringVar(&role, "role", middleware.RoleOperator, "role claim")
	flagSet.IntVar(&ttl, "ttl", config.AccessTTLMin(), "token lifetime in minutes")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if subject == "" {
		return errors.New("--sub is required")
	}

	tok, err := utils.NewAccessToken(config.MustString("JWT_SECRET"), subject, role, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok.Token)
	color.New(color.Faint).Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
	return nil
}
