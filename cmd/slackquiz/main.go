package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slackquiz",
		Short:        "Slack trivia quiz webhook",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, lambdaCmd(), migrateCmd(), signCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `slackquiz --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLogFlags(f *pflag.FlagSet, format string) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", format, "Log format (text, json)")
}

// addAppFlags registers the flags needed to build the webhook handler.
func addAppFlags(f *pflag.FlagSet, storeDefault, secretsDefault string) {
	f.StringP("lang", "l", "en", "Message and prompt language (en, ja)")
	f.String("topic", "", "Quiz topic passed to the generator (default AWS cloud services)")
	f.String("signing-secret-id", "slack-signing-secret", "Secret identifier of the Slack signing secret")
	f.String("secrets-backend", secretsDefault, "Secret backend (env, aws, static)")
	f.String("signing-secret", "", "Signing secret value for the static backend")
	f.Duration("secret-cache-ttl", 0, "Reuse fetched secrets for this long (0 disables caching)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty always uses the fallback question)")
	f.String("llm-key", "", "API key for the LLM")
	f.String("llm-model", "gpt-4o-mini", "LLM model name")
	f.Int("llm-max-tokens", 500, "Maximum tokens per generated question")
	f.Duration("llm-timeout", 0, "HTTP timeout for LLM requests (0 means none)")
	f.Bool("quiz-strict", true, "Use the fallback for generated questions that are not exactly A-D with a valid answer")
	f.Bool("token-sign", false, "Add an HMAC to answer tokens")
	f.String("token-key-id", "", "Secret identifier of the token key (default: the signing secret)")
	f.Int("leaderboard-size", 5, "Entries shown by /leaderboard")
	addStoreFlags(f, storeDefault)
}

// addStoreFlags registers the score ledger flags.
func addStoreFlags(f *pflag.FlagSet, storeDefault string) {
	f.String("store", storeDefault, "Score ledger backend (memory, sqlite, redis, postgres, dynamodb)")
	f.String("db", "slackquiz.db", "SQLite database path")
	f.String("redis-addr", "localhost:6379", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database number")
	f.String("postgres-url", "", "Postgres connection URL")
	f.String("dynamodb-table", "quiz-scores", "DynamoDB table holding the scores, keyed by user_id")
	f.String("aws-region", "", "AWS region for DynamoDB and the aws secret backend (default from the AWS config chain)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("SLACKQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("slackquiz")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/slackquiz")
	v.AddConfigPath("/etc/slackquiz")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}
