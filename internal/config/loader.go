package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "GPT_TRANSLATOR"

	// DefaultEnvFile is the dotenv file read when none is specified.
	DefaultEnvFile = ".env"
)

// wellKnownEnv maps the bare OpenAI environment names onto config keys.
var wellKnownEnv = map[string]string{
	KeyAPIKey:  "openai.api_key",
	KeyBaseURL: "openai.base_url",
	KeyModel:   "openai.model",
}

// Options selects the files Load reads.
type Options struct {
	// ConfigFile is an explicit config file. Empty searches for config.yaml in
	// the usual places and tolerates its absence.
	ConfigFile string

	// EnvFile is the dotenv file. A missing file is not an error.
	EnvFile string
}

// Sources records where the configuration came from.
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// Load builds a Configuration. Priority, highest to lowest:
//  1. process environment (OPENAI_API_KEY or GPT_TRANSLATOR_OPENAI_API_KEY, ...)
//  2. the dotenv file
//  3. config.yaml
//  4. defaults
//
// The process environment is never modified.
func Load(opts Options) (*Configuration, Sources, error) {
	var src Sources
	v := viper.New()

	setDefaults(v)

	v.SetConfigType(defaultConfigType)
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.gpt-translator")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for env, key := range wellKnownEnv {
		// prefixed name first so it wins over the bare one
		if err := v.BindEnv(key, envPrefix+"_"+env, env); err != nil {
			return nil, src, &ConfigError{Op: "bind_env", Err: err}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, src, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	} else {
		src.ConfigFile = v.ConfigFileUsed()
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	loaded, err := mergeEnvFile(v, envFile)
	if err != nil {
		return nil, src, &ConfigError{Op: "read_env_file", Err: err}
	}
	if loaded {
		src.EnvFile = envFile
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, src, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, src, err
	}

	return &cfg, src, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("openai.transport", "http")
	v.SetDefault("openai.timeout_seconds", 60)

	v.SetDefault("translator.source", "auto")
	v.SetDefault("translator.target", "english")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// mergeEnvFile reads the well-known keys from a dotenv file into the config
// layer, above config.yaml and below the process environment. It reports
// whether the file existed.
func mergeEnvFile(v *viper.Viper, path string) (bool, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	openai := make(map[string]interface{})
	for env, key := range wellKnownEnv {
		value, ok := values[env]
		if !ok || value == "" {
			continue
		}
		openai[strings.TrimPrefix(key, "openai.")] = value
	}

	if len(openai) == 0 {
		return true, nil
	}

	if err := v.MergeConfigMap(map[string]interface{}{"openai": openai}); err != nil {
		return true, fmt.Errorf("failed to merge %s: %w", path, err)
	}
	return true, nil
}
