// Command bcflint parses and validates BCF Markup documents, reporting
// every structural and semantic violation it finds.
//
// Usage:
//
//	bcflint [--strict] [--strict-enums] [--enums policy.yaml] [--format text|json] file.bcf...
//
// Exit codes: 0 all documents valid, 1 diagnostics with errors, 2 usage.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	bcf "github.com/opensource-bim/bcf"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bcflint", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "reject undeclared vendor elements and attributes")
	strictEnums := fs.Bool("strict-enums", false, "treat enum mismatches as errors instead of warnings")
	enumsPath := fs.String("enums", "", "YAML file with permitted enum value sets")
	format := fs.String("format", "text", "diagnostic output format: text or json")
	verbose := fs.BoolP("verbose", "v", false, "log progress per file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bcflint [flags] <markup.bcf>...")
		fs.PrintDefaults()
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		return 2
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	var enums *bcf.EnumPolicy
	if *enumsPath != "" {
		p, err := bcf.LoadEnumPolicyFile(*enumsPath)
		if err != nil {
			log.Error().Err(err).Str("path", *enumsPath).Msg("cannot load enum policy")
			return 2
		}
		enums = p
	}

	popt := bcf.ParseOpt{}
	if *strict {
		popt.Unknown = bcf.UnknownStrict
	}
	vopt := bcf.ValidateOpt{Enums: enums, StrictEnums: *strictEnums}

	exit := 0
	for _, path := range files {
		iss := lintFile(log, path, popt, vopt)
		if iss.HasErrors() {
			exit = 1
		}
		if len(iss) > 0 {
			if err := printIssues(path, iss, *format); err != nil {
				log.Error().Err(err).Msg("cannot write diagnostics")
				return 1
			}
		}
	}
	return exit
}

func lintFile(log zerolog.Logger, path string, popt bcf.ParseOpt, vopt bcf.ValidateOpt) bcf.Issues {
	log.Info().Str("file", path).Msg("linting")
	data, err := os.ReadFile(path)
	if err != nil {
		return bcf.Issues{{
			Code:     bcf.CodeXMLSyntax,
			Severity: bcf.SeverityError,
			Message:  err.Error(),
		}}
	}
	m, warns, err := bcf.ParseWithWarnings(data, popt)
	if err != nil {
		iss, _ := bcf.AsIssues(err)
		return append(warns, iss...)
	}
	vm, err := bcf.Validate(m, vopt)
	if err != nil {
		iss, _ := bcf.AsIssues(err)
		return append(warns, iss...)
	}
	return append(warns, vm.Warnings()...)
}

func printIssues(path string, iss bcf.Issues, format string) error {
	if format == "json" {
		out, err := iss.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(os.Stdout, "%s\n", out)
		return err
	}
	for _, it := range iss {
		if _, err := fmt.Fprintf(os.Stdout, "%s: %s: [%s] %s at %s\n",
			path, it.Severity, it.Code, it.Message, it.Path); err != nil {
			return err
		}
	}
	return nil
}
