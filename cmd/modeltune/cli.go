package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"modeltune/internal/common/fsutil"
	"modeltune/internal/config"
	"modeltune/internal/gpu"
	"modeltune/internal/httpapi"
	"modeltune/internal/modelfile"
	"modeltune/internal/ollama"
	"modeltune/internal/tuner"
	"modeltune/pkg/types"
)

// rootOpts carries flag values shared by the subcommands. Config-file
// values fill in anything the flags left at their defaults.
type rootOpts struct {
	configPath   string
	runtimeURL   string
	modelfileDir string
	probeTimeout time.Duration
	threads      int
	logLevel     string
	fileConfig   config.Config
}

func buildRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:           "modeltune",
		Short:         "Register a local model with the serving runtime and tune its load parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Optional config file (.yaml/.json/.toml)")
	root.PersistentFlags().StringVar(&opts.runtimeURL, "runtime-url", ollama.DefaultBaseURL, "Base URL of the serving runtime")
	root.PersistentFlags().StringVar(&opts.modelfileDir, "modelfile-dir", "~/.modeltune/modelfiles", "Directory for generated Modelfiles")
	root.PersistentFlags().DurationVar(&opts.probeTimeout, "probe-timeout", ollama.DefaultProbeTimeout, "Timeout for one inference probe")
	root.PersistentFlags().IntVar(&opts.threads, "threads", 0, "Thread count override (0 = logical cores)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := opts.mergeConfigFile(cmd); err != nil {
			return err
		}
		setupLogging(opts.logLevel)
		return nil
	}

	var alias string
	tune := &cobra.Command{
		Use:     "tune <model.gguf>",
		Short:   "Register the model and converge on runtime parameters",
		Example: "  modeltune tune ~/models/llama-7b.Q4_K_M.gguf --alias llama7b",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTune(cmd.Context(), opts, args[0], alias)
		},
	}
	tune.Flags().StringVar(&alias, "alias", "", "Alias to register the model under (default: filename stem)")

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (POST /tune, GET /status, /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8090", "HTTP listen address")

	root.AddCommand(tune, serve)
	return root
}

// mergeConfigFile loads --config (when given) and applies file values to
// flags the user did not set explicitly.
func (o *rootOpts) mergeConfigFile(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if cfg.RuntimeURL != "" && !flags.Changed("runtime-url") {
		o.runtimeURL = cfg.RuntimeURL
	}
	if cfg.ModelfileDir != "" && !flags.Changed("modelfile-dir") {
		o.modelfileDir = cfg.ModelfileDir
	}
	if cfg.ProbeTimeoutSec > 0 && !flags.Changed("probe-timeout") {
		o.probeTimeout = time.Duration(cfg.ProbeTimeoutSec) * time.Second
	}
	if cfg.Threads > 0 && !flags.Changed("threads") {
		o.threads = cfg.Threads
	}
	if cfg.LogLevel != "" && !flags.Changed("log-level") {
		o.logLevel = cfg.LogLevel
	}
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins)
	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	o.fileConfig = cfg
	return nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()
}

// newService wires the collaborators: Modelfile writer, runtime client,
// accelerator detection.
func (o *rootOpts) newService() (*tuner.Service, error) {
	dir, err := fsutil.ExpandHome(o.modelfileDir)
	if err != nil {
		return nil, err
	}
	client := ollama.New(o.runtimeURL, o.probeTimeout)
	base := tuner.Config{
		Writer:  modelfile.NewWriter(dir),
		Runtime: client,
		Prober:  client,
		Threads: o.threads,
	}
	return tuner.NewService(base, client, gpu.Detect), nil
}

func runTune(ctx context.Context, opts *rootOpts, modelPath, alias string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := opts.newService()
	if err != nil {
		return err
	}
	resp, err := svc.Tune(ctx, types.TuneRequest{ModelPath: modelPath, Alias: alias, Threads: opts.threads})
	if err != nil {
		if tuner.IsLadderExhausted(err) {
			fmt.Fprintf(os.Stderr, "%s: model did not fit at the smallest configuration (ctx=%d batch=%d after %d attempts); try a smaller quantization\n",
				resp.Alias, resp.Config.ContextLength, resp.Config.BatchSize, resp.Attempts)
		}
		return err
	}
	fmt.Printf("%s: %s ctx=%d predict=%d batch=%d threads=%d\n",
		resp.Alias, resp.Outcome,
		resp.Config.ContextLength, resp.Config.PredictTokens, resp.Config.BatchSize, resp.Config.ThreadCount)
	return nil
}

func runServe(opts *rootOpts, addr string) error {
	if opts.fileConfig.Addr != "" && addr == ":8090" {
		addr = opts.fileConfig.Addr
	}
	svc, err := opts.newService()
	if err != nil {
		return err
	}
	httpapi.SetLogger(log.Logger)

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(svc)}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("runtime", opts.runtimeURL).Msg("modeltune listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
