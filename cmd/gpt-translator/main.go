// Package main is the entry point for the gpt-translator command.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hpn/gpt-translator/internal/config"
	"github.com/hpn/gpt-translator/internal/security"
	"github.com/hpn/gpt-translator/internal/translator"
	"github.com/hpn/gpt-translator/internal/ui"
)

// rootOptions holds the persistent flags. Non-empty flags are passed to the
// translator as explicit values and win over every configuration source.
type rootOptions struct {
	configFile string
	envFile    string
	apiKey     string
	baseURL    string
	model      string
	source     string
	target     string
	transport  string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "gpt-translator",
		Short:         "Translate text with an OpenAI-compatible chat model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: ./config.yaml, ./configs/config.yaml, ~/.gpt-translator/config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file with OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL")
	flags.StringVar(&opts.apiKey, "api-key", "", "API key (overrides "+config.KeyAPIKey+")")
	flags.StringVar(&opts.baseURL, "base-url", "", "completion endpoint (overrides "+config.KeyBaseURL+")")
	flags.StringVar(&opts.model, "model", "", "model (overrides "+config.KeyModel+", default "+translator.DefaultModel+")")
	flags.StringVarP(&opts.source, "source", "s", "", "source language tag")
	flags.StringVarP(&opts.target, "target", "t", "", "target language name, e.g. french")
	flags.StringVar(&opts.transport, "transport", "", "completion client: http or sdk")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newTranslateCmd(opts),
		newFileCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
	)

	return cmd
}

// runWithTranslator loads configuration, builds the translator and calls fn.
// Errors are rendered on stderr before being returned.
func runWithTranslator(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, cfg *config.Configuration, logger *slog.Logger, tr *translator.ChatGPTTranslator) error) error {
	err := func() error {
		cfg, src, err := config.Load(config.Options{ConfigFile: opts.configFile, EnvFile: opts.envFile})
		if err != nil {
			return err
		}

		logger := setupLogger(cmd.ErrOrStderr(), cfg, opts.verbose)
		logger.Debug("configuration loaded",
			slog.String("config_file", src.ConfigFile),
			slog.String("env_file", src.EnvFile),
			slog.String("transport", cfg.OpenAI.Transport),
		)

		tr, err := opts.newTranslator(cfg, logger)
		if err != nil {
			return err
		}
		if opts.verbose {
			ui.PrintSettings(cmd.ErrOrStderr(), tr.Source(), tr.Target(), tr.Model(), tr.BaseURL())
		}

		return fn(cmd.Context(), cfg, logger, tr)
	}()
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err)
	}
	return err
}

// newTranslator resolves flags over configuration and builds the translator.
func (o *rootOptions) newTranslator(cfg *config.Configuration, logger *slog.Logger) (*translator.ChatGPTTranslator, error) {
	source := firstNonEmpty(o.source, cfg.Translator.Source)
	target := firstNonEmpty(o.target, cfg.Translator.Target)

	return translator.NewChatGPTTranslator(source, target,
		translator.WithAPIKey(o.apiKey),
		translator.WithBaseURL(o.baseURL),
		translator.WithModel(o.model),
		translator.WithStore(cfg),
		translator.WithTransport(firstNonEmpty(o.transport, cfg.OpenAI.Transport)),
		translator.WithTimeout(cfg.Timeout()),
		translator.WithLogger(logger),
	)
}

// setupLogger creates a redacting structured logger writing to w.
func setupLogger(w io.Writer, cfg *config.Configuration, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(security.NewRedactedHandler(handler))
}

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate the arguments, or stdin when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithTranslator(cmd, opts, func(ctx context.Context, _ *config.Configuration, _ *slog.Logger, tr *translator.ChatGPTTranslator) error {
				text := strings.Join(args, " ")
				if len(args) == 0 {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
					text = strings.TrimSpace(string(data))
				}

				translated, err := tr.Translate(ctx, text)
				if err != nil {
					return err
				}
				ui.PrintTranslation(cmd.OutOrStdout(), translated)
				return nil
			})
		},
	}
}

func newFileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Translate the content of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithTranslator(cmd, opts, func(ctx context.Context, _ *config.Configuration, _ *slog.Logger, tr *translator.ChatGPTTranslator) error {
				translated, err := tr.TranslateFile(ctx, args[0])
				if err != nil {
					return err
				}
				ui.PrintTranslation(cmd.OutOrStdout(), translated)
				return nil
			})
		},
	}
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <text>...",
		Short: "Translate each argument separately, in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithTranslator(cmd, opts, func(ctx context.Context, _ *config.Configuration, _ *slog.Logger, tr *translator.ChatGPTTranslator) error {
				translations, err := tr.TranslateBatch(ctx, args)
				if err != nil {
					return err
				}
				ui.PrintBatch(cmd.OutOrStdout(), translations)
				return nil
			})
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
