// Package main is the fintax CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/app"
	"github.com/hyperjump/fintax/internal/cli"
	"github.com/hyperjump/fintax/internal/config"
	"github.com/hyperjump/fintax/internal/server"
	"github.com/hyperjump/fintax/pkg/utils"
)

var version = "dev"

const defaultConfigFile = "config.yaml"

// resolveConfigPath returns path, or config.yaml in the working directory when
// path is empty and that file exists. An empty result means environment only.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, defaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// loadConfig loads .env, then the config file at path, then the environment.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	resolved := resolveConfigPath(path)
	cfg, err := config.Load(resolved)
	if err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func main() {
	command := "server"
	args := []string{}
	if len(os.Args) >= 2 {
		command = os.Args[1]
		args = os.Args[2:]
	}
	switch command {
	case "server":
		runServer(args)
	case "query":
		runQuery(args)
	case "chat":
		runChat(args)
	case "version", "--version", "-v":
		fmt.Printf("fintax version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		if strings.HasPrefix(command, "-") {
			runServer(os.Args[1:])
			return
		}
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads configuration, builds the logger, and opens the service state.
func setup(configPath string, debug bool) (*app.State, *config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolved),
		zap.String("source", cfg.Source.File),
		zap.String("retrieval_mode", cfg.Retrieval.Mode),
		zap.Bool("debug", debugMode),
	)

	state, err := app.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}
	return state, cfg, logger
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml when present)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	state, cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	defer func() {
		if err := state.Close(); err != nil {
			logger.Warn("failed to clean up index", zap.Error(err))
		}
	}()

	srv := server.NewServer(state, &cfg.Server, logger)
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("Server failed", zap.Error(err))
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that appear after the question to the front so that
// flag.Parse sees them; the flag package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseOutputFormat maps the -output flag value to a cli.OutputFormat.
func parseOutputFormat(s string) (cli.OutputFormat, error) {
	switch s {
	case "text", "":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

type questionFlags struct {
	fs         *flag.FlagSet
	configPath *string
	debug      *bool
	output     *string
}

func newQuestionFlags(name string) *questionFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	q := &questionFlags{
		fs:         fs,
		configPath: fs.String("config", "", "config file path (default: ./config.yaml when present)"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
		output:     fs.String("output", "text", "output format: text or json"),
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: fintax %s [flags] <question>\n\n", name)
		fs.PrintDefaults()
	}
	return q
}

// parse returns the question and output format, exiting on invalid input.
func (q *questionFlags) parse(args []string) (string, cli.OutputFormat) {
	_ = q.fs.Parse(argsReorder(args))
	question := buildQuestion(q.fs.Args())
	if question == "" {
		q.fs.Usage()
		os.Exit(1)
	}
	format, err := parseOutputFormat(*q.output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return question, format
}

func runQuery(args []string) {
	flags := newQuestionFlags("query")
	question, format := flags.parse(args)

	state, _, logger := setup(*flags.configPath, *flags.debug)
	defer logger.Sync()

	resp, err := state.Query(context.Background(), question)
	if err == nil {
		err = cli.WriteQueryResults(os.Stdout, resp, format)
	}
	exitOnError(state, logger, "Query failed", err)
}

func runChat(args []string) {
	flags := newQuestionFlags("chat")
	question, format := flags.parse(args)

	state, cfg, logger := setup(*flags.configPath, *flags.debug)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout()+10*time.Second)
	defer cancel()
	resp, err := state.Chat(ctx, question)
	if err == nil {
		err = cli.WriteChatResponse(os.Stdout, resp, format)
	}
	exitOnError(state, logger, "Chat failed", err)
}

// exitOnError destroys the index, then exits non-zero when err is set.
func exitOnError(state *app.State, logger *zap.Logger, msg string, err error) {
	if closeErr := state.Close(); closeErr != nil {
		logger.Warn("failed to clean up index", zap.Error(closeErr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fintax - Tax law question answering over a GST text

Usage:
  fintax server [flags]              Build the index and start the HTTP server (default)
  fintax query [flags] <question>    Print the top matching chunks
  fintax chat [flags] <question>     Answer a question with the language model
  fintax version                     Show version
  fintax help                        Show this help

Flags:
  --config string    Config file path (default: ./config.yaml when present)
  --debug            Enable debug logging
  --output string    Output format for query and chat: text or json (default: text)

Environment:
  OPENROUTER_API_KEY, SAMPLE_FILE, INDEX_PATH, RETRIEVAL_MODE, PORT, ...
  Values from a .env file in the working directory are loaded first.

Examples:
  fintax server
  fintax query "what is input tax credit"
  fintax chat --output json who is liable to pay GST`)
}
