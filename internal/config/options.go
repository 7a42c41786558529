package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/riskibarqy/go-autocommit/internal/git"
)

const (
	envPrefix  = "AUTOCOMMIT"
	configName = ".autocommit"

	defaultRepo     = "."
	defaultBackend  = git.BackendGoGit
	defaultLogLevel = "warn"
	defaultTimeout  = 40 * time.Second
)

// Flag names shared by the command line, the environment and the config file.
const (
	FlagRepo     = "repo"
	FlagBackend  = "backend"
	FlagLogLevel = "log-level"
	FlagTimeout  = "timeout"
)

// Options captures all user facing configuration.
type Options struct {
	RepoPath string
	Backend  string
	LogLevel string
	Timeout  time.Duration
}

// RegisterFlags adds the shared flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagRepo, defaultRepo, "Path inside the git repository")
	fs.String(FlagBackend, defaultBackend, "Diff source backend: go-git or git")
	fs.String(FlagLogLevel, defaultLogLevel, "Log level written to stderr (debug, info, warn, error)")
	fs.Duration(FlagTimeout, defaultTimeout, "Total timeout for the command")
}

// Load resolves options from flags, AUTOCOMMIT_* environment variables and an
// optional .autocommit.yaml in the working directory, in that order of precedence.
func Load(fs *pflag.FlagSet) (Options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(FlagRepo, defaultRepo)
	v.SetDefault(FlagBackend, defaultBackend)
	v.SetDefault(FlagLogLevel, defaultLogLevel)
	v.SetDefault(FlagTimeout, defaultTimeout)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Options{}, errors.Wrap(err, "read config file")
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Options{}, errors.Wrap(err, "bind flags")
		}
	}

	opts := Options{
		RepoPath: stringsFallback(v.GetString(FlagRepo), defaultRepo),
		Backend:  stringsFallback(v.GetString(FlagBackend), defaultBackend),
		LogLevel: stringsFallback(v.GetString(FlagLogLevel), defaultLogLevel),
		Timeout:  v.GetDuration(FlagTimeout),
	}
	return opts, opts.Validate()
}

// Validate rejects unknown backends and non-positive timeouts.
func (o Options) Validate() error {
	switch o.Backend {
	case git.BackendGoGit, git.BackendCLI:
	default:
		return errors.WithHint(
			errors.Newf("unsupported backend %q", o.Backend),
			"use --backend go-git or --backend git")
	}
	if o.Timeout <= 0 {
		return errors.Newf("timeout must be positive, got %s", o.Timeout)
	}
	return nil
}

func stringsFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
