package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/chargeview/internal/config"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("chargeview %s (commit: %s, built: %s)", b.Version, b.Commit, b.BuildDate)
}

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chargeview",
		Short: "chargeview: headless partial-charge visualization",
		Long: "chargeview loads macromolecular structures annotated with partial atomic charges,\n" +
			"drives the visualization state controller without a GPU and reports the\n" +
			"resolved scene, charge methods and consistency of charge annotations.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./chargeview.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, yaml, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "global operation timeout")

	cmd.AddCommand(
		NewRenderCmd(),
		NewInspectCmd(),
		NewAnnotateCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "yaml", "table":
	default:
		return errors.InvalidParam("unknown output format").WithDetail(opts.OutputFormat)
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: env > file > defaults.  The
// CLI always reads local files.
func initConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := opts.ConfigPath; path != "" {
		cfg, err = config.Load(path)
	} else if path := findConfigFile(); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	cfg.Viewer.AllowLocalFiles = true
	return cfg, nil
}

func findConfigFile() string {
	searchPaths := []string{"./chargeview.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".chargeview", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/chargeview/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Precondition("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Precondition("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext derives the operation context bounded by --timeout.
func commandContext(cmd *cobra.Command, cc *CLIContext) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if cc.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cc.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "yaml":
		return printYAML(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(cmd *cobra.Command, data interface{}) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// printText prints strings and Stringers as-is and anything else as YAML.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		return printYAML(cmd, data)
	}
	return nil
}

// printTable outputs data as a table if it implements the TableData interface,
// otherwise falls back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	type tableProvider interface {
		TableHeaders() []string
		TableRows() [][]string
	}

	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.  Application errors
// print their code and detail.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		if appErr.Detail != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s (%s)\n", appErr.Code, appErr.Message, appErr.Detail)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", appErr.Code, appErr.Message)
		}
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(colWidths))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// NewVersionCmd prints the build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}

//Personal.AI order the ending
