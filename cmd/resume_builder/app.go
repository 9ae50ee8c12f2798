package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/ratelimit"
	"github.com/jonathan/resume-builder/internal/style"
	"github.com/jonathan/resume-builder/internal/telemetry"
)

// flagOverrides maps CLI flags onto config fields. A flag only wins over the
// config file and environment when it was set explicitly.
var flagOverrides = map[string]func(fs *pflag.FlagSet, name string, cfg *config.Config) error{
	"verbose":        setBool(func(c *config.Config) *bool { return &c.Verbose }),
	"trace":          setBool(func(c *config.Config) *bool { return &c.Trace }),
	"trace-endpoint": setString(func(c *config.Config) *string { return &c.TraceEndpoint }),
	"db-url":         setString(func(c *config.Config) *string { return &c.DatabaseURL }),
	"api-key":        setString(func(c *config.Config) *string { return &c.APIKey }),
	"provider":       setString(func(c *config.Config) *string { return &c.Provider }),
	"model":          setString(func(c *config.Config) *string { return &c.Model }),
	"api-url":        setString(func(c *config.Config) *string { return &c.APIURL }),
	"resume":         setString(func(c *config.Config) *string { return &c.Resume }),
	"style":          setString(func(c *config.Config) *string { return &c.Style }),
	"styles-dir":     setString(func(c *config.Config) *string { return &c.StylesDir }),
	"output":         setString(func(c *config.Config) *string { return &c.Output }),
	"usage-log":      setString(func(c *config.Config) *string { return &c.UsageLog }),
	"job-url":        setString(func(c *config.Config) *string { return &c.JobURL }),
	"job-text":       setString(func(c *config.Config) *string { return &c.JobText }),
	"use-browser":    setBool(func(c *config.Config) *bool { return &c.UseBrowser }),
	"base64":         setBool(func(c *config.Config) *bool { return &c.Base64 }),
	"strict":         setBool(func(c *config.Config) *bool { return &c.Strict }),
	"workers": func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetInt(name)
		cfg.Workers = v
		return err
	},
	"rpm": func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetInt(name)
		cfg.RequestsPerMinute = v
		return err
	},
	"max-pages": func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetInt(name)
		cfg.MaxPages = v
		return err
	},
	"max-attempts": func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetInt(name)
		cfg.MaxAttempts = v
		return err
	},
	"initial-delay": func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetDuration(name)
		cfg.InitialDelay = v
		return err
	},
	"temperature": func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetFloat64(name)
		cfg.Temperature = v
		return err
	},
}

func setString(field func(*config.Config) *string) func(*pflag.FlagSet, string, *config.Config) error {
	return func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetString(name)
		*field(cfg) = v
		return err
	}
}

func setBool(field func(*config.Config) *bool) func(*pflag.FlagSet, string, *config.Config) error {
	return func(fs *pflag.FlagSet, name string, cfg *config.Config) error {
		v, err := fs.GetBool(name)
		*field(cfg) = v
		return err
	}
}

// applyFlagOverrides copies every explicitly set flag into cfg.
func applyFlagOverrides(fs *pflag.FlagSet, cfg *config.Config) error {
	var firstErr error
	fs.Visit(func(f *pflag.Flag) {
		set, ok := flagOverrides[f.Name]
		if !ok || firstErr != nil {
			return
		}
		if err := set(fs, f.Name, cfg); err != nil {
			firstErr = fmt.Errorf("invalid --%s: %w", f.Name, err)
		}
	})
	return firstErr
}

// loadConfig merges the config file, environment and explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(config.Defaults())
	if merged.APIKey == "" {
		merged.APIKey = config.APIKeyFromEnv(llm.Provider(merged.Provider))
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// app holds the collaborators shared by the commands.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	out    io.Writer
	db     *db.DB
	closer []func()
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg: cfg,
		log: logging.New(cmd.ErrOrStderr(), cfg.Verbose),
		out: cmd.OutOrStdout(),
	}
	if cfg.Verbose && configPath != "" {
		_, _ = fmt.Fprintf(a.out, "Loaded config from: %s\n", configPath)
	}

	if cfg.Trace {
		shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Options{
			ServiceName: telemetry.ServiceName,
			Version:     version,
			Endpoint:    cfg.TraceEndpoint,
			Out:         cmd.ErrOrStderr(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start tracing: %w", err)
		}
		a.closer = append(a.closer, func() {
			if err := shutdown(context.Background()); err != nil {
				a.log.WithError(err).Warn("failed to flush traces")
			}
		})
	}
	return a, nil
}

// connectDB opens the optional run database.
func (a *app) connectDB(ctx context.Context) error {
	if a.cfg.DatabaseURL == "" || a.db != nil {
		return nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return err
	}
	a.db = database
	a.closer = append(a.closer, database.Close)
	a.log.Debug("connected to run database")
	return nil
}

func (a *app) styles() *style.Manager {
	if a.cfg.StylesDir == "" {
		return style.Builtin(a.log)
	}
	return style.NewDirManager(a.cfg.StylesDir, a.log)
}

// usageSink records each completion in the NDJSON log and, when connected,
// in the database.
func (a *app) usageSink() llm.UsageSink {
	sinks := llm.MultiSink{}
	if a.cfg.UsageLog != "" {
		sinks = append(sinks, llm.NewFileUsageLog(a.cfg.UsageLog))
	}
	if a.db != nil {
		sinks = append(sinks, a.db)
	}
	return sinks
}

// client builds the retrying completion client.
func (a *app) client(ctx context.Context) (llm.Client, error) {
	if a.cfg.APIKey == "" {
		env := "OPENAI_API_KEY"
		if llm.Provider(a.cfg.Provider) == llm.ProviderGemini {
			env = "GEMINI_API_KEY"
		}
		return nil, fmt.Errorf("%s environment variable or --api-key flag is required", env)
	}
	inner, err := llm.NewClient(ctx, a.cfg.LLM(), llm.TierLite, a.cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	opts := []llm.RetryOption{
		llm.WithRetryConfig(a.cfg.Retry()),
		llm.WithUsageSink(a.usageSink()),
		llm.WithLogger(a.log),
	}
	if limiter := ratelimit.PerMinute(a.cfg.RequestsPerMinute); limiter != nil {
		opts = append(opts, llm.WithLimiter(limiter))
	}
	return llm.NewRetryingClient(inner, opts...), nil
}

func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
}
