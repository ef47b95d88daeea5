package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/dynaform/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dynaform", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dynaform - Build a dynamic form from field descriptors and report its state.

Usage:
  dynaform [options] [FIELDS_PATH]

Arguments:
  FIELDS_PATH
    Path to a .json or .yaml file holding the field descriptors.

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths []string
	var inputs []app.Input
	fieldsFlag := flagSet.String("fields", "", "Path to the field descriptors (.json, .yaml).")
	fFlag := flagSet.String("f", "", "Path to the field descriptors (shorthand).")
	modelFlag := flagSet.String("model", "", "Path to the initial model (.json, .yaml).")
	flagSet.Func("config", "Path to an .hcl registry configuration file or directory. Repeatable.", func(s string) error {
		configPaths = append(configPaths, s)
		return nil
	})
	flagSet.Func("set", "Input a value as key=value; the value is parsed as JSON when possible. Repeatable.", func(s string) error {
		in, err := app.ParseInput(s)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
		return nil
	})
	submitFlag := flagSet.Bool("submit", false, "Submit the form after applying inputs; exit non-zero when invalid.")
	dumpFlag := flagSet.Bool("dump", false, "Dump the built field tree to the log output.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *fieldsFlag != "" {
		path = *fieldsFlag
	} else if *fFlag != "" {
		path = *fFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Fields path determined.", "path", path)

	if path == "" {
		slog.Debug("No fields path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		FieldsPath:  path,
		ModelPath:   *modelFlag,
		ConfigPaths: configPaths,
		Inputs:      inputs,
		Submit:      *submitFlag,
		Dump:        *dumpFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
