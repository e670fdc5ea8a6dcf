package checkcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bundlecheck/internal/config"
	"github.com/lehigh-university-libraries/bundlecheck/internal/logging"
)

// Globals carries the persistent flags shared by every subcommand
type Globals struct {
	ConfigPath string
	Verbose    bool
}

// BindFlags registers --config and --verbose on the root command
func (g *Globals) BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&g.ConfigPath, "config", "", "Path to a bundlecheck.yaml or bundlecheck.toml file (default: search the working directory)")
	cmd.PersistentFlags().BoolVar(&g.Verbose, "verbose", false, "Verbose logging")
}

// setup loads configuration and installs the logger. Logs go to stderr so
// that reports on stdout stay machine readable.
func (g *Globals) setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if g.Verbose {
		cfg.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
