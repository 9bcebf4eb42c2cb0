package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/resgateio/resgate/logger"
	"github.com/mcncl/json2xml/internal/analyzer"
	"github.com/mcncl/json2xml/internal/charset"
	"github.com/mcncl/json2xml/internal/config"
	"github.com/mcncl/json2xml/internal/errors"
	"github.com/mcncl/json2xml/internal/parser"
	"github.com/mcncl/json2xml/internal/transform"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output XML file. If not specified, writes to stdout." short:"o" type:"path"`
	Root        string `help:"Name of the root element (default: root)." short:"r"`
	MaxDepth    int    `help:"Maximum object/array nesting depth (default: 1000)." short:"m"`
	Config      string `help:"Path to configuration file. If not specified, searches for .json2xml.yml in current and parent directories." short:"c" type:"path"`
	Charset     string `help:"Charset of the input (default: utf-8)."`
	ContentType string `help:"Content-Type of the input; its charset parameter selects the decoder."`
	Indent      string `help:"Pretty-print the XML using this indent per level."`
	Declaration bool   `help:"Prefix the output with an XML declaration."`
	Naming      string `help:"Element naming style: keep, camel, lower_camel, snake or kebab."`
	Check       bool   `help:"Validate the input and report its structure without writing XML."`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger logger.Logger
}

// Version information
const (
	Version = "0.1.0"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("json2xml"),
		kong.Description("A tool to convert JSON documents to XML"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	// Parse the command line arguments
	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("json2xml version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	ctx := &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Logger: newLogger(cfg.Dev.Debug),
	}

	err = run(ctx)
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		// Show help on error
		fmt.Fprintf(os.Stderr, "\nFor help, run: json2xml --help\n")

		os.Exit(1)
	}
}

// loadConfig resolves the configuration from file, environment and flags.
func loadConfig() (*config.Config, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{
		RootElement: CLI.Root,
		MaxDepth:    CLI.MaxDepth,
		Charset:     CLI.Charset,
		Indent:      CLI.Indent,
		Naming:      CLI.Naming,
		Declaration: CLI.Declaration,
		Debug:       CLI.Debug,
	}, os.LookupEnv)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to load configuration: %v", err), err)
	}
	return cfg, nil
}

// newLogger returns a stderr logger that only writes debug messages when
// debug is set.
func newLogger(debug bool) logger.Logger {
	return logger.NewStdLogger(debug, debug)
}

const logPrefix = "[json2xml] "

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}
	if ctx.Logger == nil {
		ctx.Logger = newLogger(ctx.Debug)
	}
	cfg := ctx.Config

	// 1. Read the payload
	data, err := readInput()
	if err != nil {
		return err
	}
	if cfg.Input.MaxSize > 0 && int64(len(data)) > cfg.Input.MaxSize {
		return errors.NewInputError(
			fmt.Sprintf("input is %d bytes, the limit is %d", len(data), cfg.Input.MaxSize),
			errors.ErrInputTooLarge,
		)
	}
	ctx.Logger.Debugf(logPrefix, "read %d bytes", len(data))

	// 2. Decode it to UTF-8
	label := cfg.Input.Charset
	if CLI.Charset == "" && CLI.ContentType != "" {
		label = charset.FromContentType(CLI.ContentType)
	}
	text, err := charset.Decode(data, label)
	if err != nil {
		return err
	}

	// 3. Parse under the configured depth bound
	tr, err := transform.New(transform.WithConfig(cfg))
	if err != nil {
		return err
	}
	doc, err := tr.Parse(text)
	if err != nil {
		logFailure(ctx, err)
		return err
	}

	stats := analyzer.NewAnalyzerWithConfig(cfg).Analyze(doc)
	ctx.Logger.Debugf(logPrefix, "parsed document: %s", stats.Summary())
	for _, name := range stats.InvalidNames {
		ctx.Logger.Debugf(logPrefix, "invalid element name %q at %s", name.Name, name.Path)
	}

	// 4. Serialize
	xml, err := tr.Render(doc)
	if err != nil {
		logFailure(ctx, err)
		return err
	}
	ctx.Logger.Debugf(logPrefix, "rendered %d bytes of %s", len(xml), transform.ContentType)

	if CLI.Check {
		_, err := fmt.Fprintf(stdout, "OK: %s\n", stats.Summary())
		if err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}

	// 5. Output the result
	return writeOutput(xml)
}

func logFailure(ctx *Context, err error) {
	ctx.Logger.Debugf(logPrefix, "%s (status %d, content type %s): %v",
		transform.FailureKeyFor(ctx.Config.Scope), transform.StatusFor(ctx.Config.Scope), transform.ContentType, err)
}

// readInput reads JSON from file or stdin
func readInput() ([]byte, error) {
	if CLI.Input != "" {
		return parser.ReadFile(CLI.Input)
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		// No data provided on stdin and not in interactive mode
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}

	if len(data) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return data, nil
}

// writeOutput writes the XML to file or stdout
func writeOutput(xml string) error {
	if CLI.Output != "" {
		// Write to file
		err := os.WriteFile(CLI.Output, []byte(xml), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(stderr, "XML written to %s\n", CLI.Output)
		return nil
	}

	// Write to stdout
	_, err := fmt.Fprintln(stdout, strings.TrimRight(xml, "\n"))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() ([]byte, error) {
	fmt.Fprintln(stderr, "json2xml Interactive Mode")
	fmt.Fprintln(stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			// End of input
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(jsonBuilder.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(stderr, "\nProcessing JSON...")
	return []byte(jsonBuilder.String()), nil
}
