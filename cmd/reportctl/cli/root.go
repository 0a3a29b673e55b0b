// Package cli implements the reportctl commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/laundryconnect/laundryconnect/internal/app"
	"github.com/laundryconnect/laundryconnect/internal/notify"
	"github.com/laundryconnect/laundryconnect/internal/reports"
)

// Generator is the report service surface the commands drive.
type Generator interface {
	Preview(ctx context.Context, req reports.Request) (reports.ReportDocument, error)
	Generate(ctx context.Context, req reports.Request, sink reports.Sink) (reports.Artifact, error)
	GenerateInvoice(ctx context.Context, orderID string, format reports.Format, sink reports.Sink) (reports.Artifact, error)
}

// Settings are resolved from flags, LAUNDRY_* environment variables and an optional config file, in that order.
type Settings struct {
	SeedFile     string `mapstructure:"seed-file"`
	Engine       string `mapstructure:"engine"`
	GotenbergURL string `mapstructure:"gotenberg-url"`
	Currency     string `mapstructure:"currency"`
	Locale       string `mapstructure:"locale"`
	Company      string `mapstructure:"company"`
	OutDir       string `mapstructure:"out"`
	Verbose      bool   `mapstructure:"verbose"`
}

// Options wires the CLI to its environment.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Build constructs the generator; nil uses the embedded order store.
	Build func(settings Settings, logger *slog.Logger) (Generator, error)
}

type root struct {
	opts       Options
	v          *viper.Viper
	configFile string
	settings   Settings
	logger     *slog.Logger
	generator  Generator
}

// NewRootCmd assembles the reportctl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Build == nil {
		opts.Build = buildService
	}
	r := &root{opts: opts, v: viper.New()}

	cmd := &cobra.Command{
		Use:               "reportctl",
		Short:             "Generate LaundryConnect reports and invoices",
		SilenceUsage:      true,
		PersistentPreRunE: r.init,
	}
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&r.configFile, "config", "", "Path to a config file (yaml, json or toml)")
	flags.String("seed-file", "", "JSON order fixture; the embedded fixture is used when empty")
	flags.String("engine", app.EngineNative, "PDF engine: native or gotenberg")
	flags.String("gotenberg-url", "http://127.0.0.1:3000", "Gotenberg endpoint for the gotenberg engine")
	flags.String("currency", "$", "Currency symbol prefixed to amounts")
	flags.String("locale", "en", "Locale used for digit grouping")
	flags.String("company", "LaundryConnect", "Company name printed on documents")
	flags.String("out", ".", "Directory generated files are written to")
	flags.BoolP("verbose", "v", false, "Log generation details to stderr")

	cmd.AddCommand(newTypesCmd(r), newPreviewCmd(r), newGenerateCmd(r), newInvoiceCmd(r))
	return cmd
}

func (r *root) init(cmd *cobra.Command, _ []string) error {
	r.v.SetEnvPrefix("LAUNDRY")
	r.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	r.v.AutomaticEnv()
	if err := r.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if r.configFile != "" {
		r.v.SetConfigFile(r.configFile)
		if err := r.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := r.v.Unmarshal(&r.settings); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	level := slog.LevelWarn
	if r.settings.Verbose {
		level = slog.LevelInfo
	}
	r.logger = slog.New(slog.NewTextHandler(r.opts.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// service builds the generator lazily so commands that need no data skip loading it.
func (r *root) service() (Generator, error) {
	if r.generator != nil {
		return r.generator, nil
	}
	g, err := r.opts.Build(r.settings, r.logger)
	if err != nil {
		return nil, err
	}
	r.generator = g
	return g, nil
}

func buildService(settings Settings, logger *slog.Logger) (Generator, error) {
	cfg := &app.Config{
		ReportEngine:         settings.Engine,
		GotenbergURL:         settings.GotenbergURL,
		ReportCurrencySymbol: settings.Currency,
		ReportLocale:         settings.Locale,
		ReportCompany:        settings.Company,
		SeedFile:             settings.SeedFile,
		AppRateLimit:         1,
		ReportRateLimit:      1,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.NewReportService(cfg, app.ServiceDeps{
		Logger:   logger,
		Notifier: notify.LogNotifier{Logger: logger},
	})
}
