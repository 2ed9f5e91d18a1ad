package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emx-mail/mailfile/pkgs/config"
	flag "github.com/spf13/pflag"
)

const version = "1.0.0"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app holds options parsed from the command line
type app struct {
	configPath string
	verbose    bool
	dryRun     bool

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cfg    *config.Config

	newSender senderFactory
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, newSender: senderFor}

	fs := flag.NewFlagSet("mailfile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.configPath, "config", "", "Settings file (YAML)")
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVar(&a.dryRun, "dry-run", false, "Preview email without sending")
	initPath := fs.String("init", "", "Write a template email file to path (\"-\" for stdout)")
	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.BoolP("help", "h", false, "Show help")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr)
		return exitUsage
	}
	if *showHelp {
		printUsage(stdout)
		return exitOK
	}
	if *showVersion {
		fmt.Fprintf(stdout, "mailfile v%s\n", version)
		return exitOK
	}

	if *initPath != "" {
		if fs.NArg() != 0 {
			printUsage(stderr)
			return exitUsage
		}
		if err := handleInit(stdout, *initPath); err != nil {
			fmt.Fprintf(stderr, "Error: init: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	// Checked before anything touches the filesystem or network.
	if fs.NArg() < 1 || fs.NArg() > 2 {
		printUsage(stderr)
		return exitUsage
	}
	emailFile := fs.Arg(0)
	attachment := fs.Arg(1)

	cfg, err := a.loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return exitFailure
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Logging, a.verbose, stderr)

	if err := a.handleSend(ctx, emailFile, attachment); err != nil {
		a.logger.Debug("send failed", "error", err, "canceled", errors.Is(err, context.Canceled))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	return config.Load()
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `mailfile v%s - Send an email described by a text file

Usage:
  mailfile [options] <email-file> [attachment]

Arguments:
  email-file     File with Server, User, Password, To, CC, BCC, Subject and Body fields
  attachment     Optional file to attach

Options:
  --config <path>   Settings file (YAML): logging and TLS trust
  --dry-run         Build and preview the email without sending
  --init <path>     Write a template email file ("-" for stdout)
  -v, --verbose     Verbose output
  --version         Show version information
  -h, --help        Show help

Email file format:
  Server: smtp.example.com
  User: me@example.com
  Password: secret
  To: you@example.com
  CC: a@example.com, b@example.com
  BCC: c@example.com
  Subject: Hello
  Body: first line of the body
  more body lines...

The message is sent over implicit TLS (SMTPS) on port 465.

Environment:
  %s, %s, %s
`, version, config.EnvLogLevel, config.EnvLogFormat, config.EnvTLSCAFile)
}
