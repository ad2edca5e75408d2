// getvalue loads company financial statements from Financial Modeling Prep or
// from pasted spreadsheet text, derives TTM figures and reports ratios.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/getvalue/api"
	"github.com/seenimoa/getvalue/internal/config"
	"github.com/seenimoa/getvalue/internal/infra"
	"github.com/seenimoa/getvalue/internal/manager"
	"github.com/seenimoa/getvalue/internal/provider"
	"github.com/seenimoa/getvalue/internal/providers"
	"github.com/seenimoa/getvalue/internal/report"
	"github.com/seenimoa/getvalue/internal/store"
	"github.com/seenimoa/getvalue/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "getvalue",
	Short: "Company financial statements, TTM and ratios",
	Long: `getvalue loads income statement, balance sheet and cash flow data for a
company from the Financial Modeling Prep API or from tab-delimited text pasted
from a spreadsheet, derives trailing-twelve-month figures and computes
valuation and profitability ratios.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		infra.SetupLogging(cfg.LogOptions(), os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(keysCmd)
}

// newRegistry registers every source configured in cfg.
func newRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}
	return reg, nil
}

// newManager wires the registered sources and an in-memory store.
func newManager() (*manager.Manager, *provider.Registry, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, nil, err
	}
	return manager.New(providers.DefaultSource(reg), store.NewMemory(), cfg.ManagerOptions()), reg, nil
}

// output prints the text report and writes the optional exports.
func output(cmd *cobra.Command, c *models.CompanyFinancials) error {
	if err := report.WriteText(cmd.OutOrStdout(), c); err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteCSV(w, c) }); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "CSV written to %s\n", path)
	}
	if path, _ := cmd.Flags().GetString("html"); path != "" {
		html, err := report.GenerateHTML(c, time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write dashboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dashboard written to %s\n", path)
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("csv", "", "write long-format CSV to this path")
	cmd.Flags().String("html", "", "write the HTML dashboard to this path")
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("getvalue %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Load Command ---

var loadCmd = &cobra.Command{
	Use:   "load [ticker]",
	Short: "Load a company from the Financial Modeling Prep API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if periods, _ := cmd.Flags().GetInt("periods"); periods > 0 {
			cfg.FMP.AnnualPeriods = periods
		}
		mgr, _, err := newManager()
		if err != nil {
			return err
		}

		c, err := mgr.Company(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}
		return output(cmd, c)
	},
}

func init() {
	loadCmd.Flags().Int("periods", 0, "annual periods to keep (default from config)")
	addExportFlags(loadCmd)
}

// --- Import Command ---

var importCmd = &cobra.Command{
	Use:   "import [file|-]",
	Short: "Import pasted statement text or an HTML table",
	Long: `Import a tab-delimited statement block copied from a spreadsheet, or the
HTML table form of the same copy. Use "-" to read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		mgr, _, err := newManager()
		if err != nil {
			return err
		}
		ticker, _ := cmd.Flags().GetString("ticker")
		c, err := mgr.LoadCompany(cmd.Context(), string(raw), ticker)
		if err != nil {
			return err
		}
		return output(cmd, c)
	},
}

func init() {
	importCmd.Flags().String("ticker", "", "ticker to label the pasted company with")
	addExportFlags(importCmd)
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, reg, err := newManager()
		if err != nil {
			return err
		}
		if cfg.FMP.APIKey == "" {
			log.Warn().Msg("no FMP API key configured, only pasted statements can be loaded")
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr()
		}
		return api.NewServer(cfg, mgr, reg).ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config api.host:api.port)")
}

// --- Keys Command ---

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  getvalue: API Keys")
		fmt.Println("═══════════════════════════════════════")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("  %-25s %s\n", k.Name+":", status)
		}
		if cfg.File != "" {
			fmt.Printf("  %-25s %s\n", "Config file:", cfg.File)
		}

		if check, _ := cmd.Flags().GetBool("check"); check {
			reg, err := newRegistry()
			if err != nil {
				return err
			}
			results := providers.PingAll(cmd.Context(), reg)
			if len(results) == 0 {
				fmt.Println("  No sources registered, nothing to check")
			}
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = "FAILED: " + r.Err.Error()
				}
				fmt.Printf("  %-25s %s\n", r.Name+" ping:", status)
			}
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func init() {
	keysCmd.Flags().Bool("check", false, "ping each registered source with its key")
}
