package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"wikiscrap/internal/app"
	"wikiscrap/internal/config"
	"wikiscrap/internal/logging"
	"wikiscrap/internal/parse"
)

// Env holds the process collaborators of the command tree. Zero fields get the
// real implementations.
type Env struct {
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	Run       func(ctx context.Context, opts app.Options) (*app.Session, error)
	Inspect   func(ctx context.Context, opts app.Options, rawURL string) (parse.Page, error)
	NewLogger func(development bool) (*zap.Logger, error)
}

func (e Env) withDefaults() Env {
	if e.In == nil {
		e.In = os.Stdin
	}
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Err == nil {
		e.Err = os.Stderr
	}
	if e.Run == nil {
		e.Run = app.Run
	}
	if e.Inspect == nil {
		e.Inspect = app.Inspect
	}
	if e.NewLogger == nil {
		e.NewLogger = logging.New
	}
	return e
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"urls":            "urls",
	"file":            "url_file",
	"keyword":         "keyword",
	"limit":           "limit",
	"output":          "output_dir",
	"timeout":         "timeout_seconds",
	"user-agent":      "user_agent",
	"pause":           "pause_seconds",
	"retries":         "retries",
	"max-redirects":   "max_redirects",
	"search-endpoint": "search_endpoint",
	"download-images": "download_images",
	"verbose":         "verbose",
}

type command struct {
	env    Env
	v      *viper.Viper
	cfg    config.Config
	logger *zap.Logger
}

func NewRootCmd(env Env) *cobra.Command {
	c := &command{env: env.withDefaults(), logger: zap.NewNop()}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "wikiscrap",
		Short: "Scrape Wikipedia articles from a URL list or a keyword search",
		Long: `wikiscrap fetches Wikipedia articles over its own HTTP/1.1 client, extracts
title, summary, sections, internal links and images, and writes one folder per
article plus a session summary (RESUME_RECHERCHE.md).

Targets come from exactly one of --urls, --file or --keyword. Settings may also
come from a wikiscrap.json/yaml config file or WIKISCRAP_* environment variables.`,
		Example: `  wikiscrap -k "Tour Eiffel" -n 3
  wikiscrap -u https://fr.wikipedia.org/wiki/Avion,https://fr.wikipedia.org/wiki/Train
  wikiscrap -f urls.txt -o out --download-images`,
		Args:              usageArgs(cobra.NoArgs),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: c.teardown,
		RunE:              c.runSession,
	}
	root.SetIn(c.env.In)
	root.SetOut(c.env.Out)
	root.SetErr(c.env.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: wikiscrap.{json,yaml} in ., configs or ~/.config/wikiscrap)")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.Float64("timeout", defaults.TimeoutSeconds, "connect/read timeout in seconds")
	pf.String("user-agent", defaults.UserAgent, "User-Agent header")
	pf.Int("retries", defaults.Retries, "retries on connection failures")
	pf.Int("max-redirects", defaults.MaxRedirects, "redirects followed per request")

	f := root.Flags()
	f.StringSliceP("urls", "u", nil, "comma separated article URLs")
	f.StringP("file", "f", "", "file with one article URL per line (# comments allowed)")
	f.StringP("keyword", "k", "", "search keyword")
	f.IntP("limit", "n", defaults.Limit, "number of search results to scrape (1-20)")
	f.StringP("output", "o", defaults.OutputDir, "output root directory")
	f.Float64("pause", defaults.PauseSeconds, "pause between articles in seconds")
	f.String("search-endpoint", defaults.SearchEndpoint, "MediaWiki api.php endpoint used for keyword search")
	f.Bool("download-images", false, "download article images into <article>/images")

	root.AddCommand(c.inspectCmd(), c.configCmd())
	return root
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(check(cmd, args))
	}
}

// setup merges defaults, config file, environment and flags into c.cfg.
func (c *command) setup(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	bindFlags(v, cmd.Flags())
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	logger, err := c.env.NewLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	c.v, c.cfg, c.logger = v, cfg, logger
	if used := v.ConfigFileUsed(); used != "" {
		logger.Info("using config file", zap.String("path", used))
	}
	return nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func (c *command) teardown(_ *cobra.Command, _ []string) {
	_ = c.logger.Sync()
}

func (c *command) runSession(cmd *cobra.Command, _ []string) error {
	opts := c.cfg.Options(cmd.OutOrStdout(), c.logger)
	_, err := c.env.Run(cmd.Context(), opts)
	return err
}
