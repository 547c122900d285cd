// Package config resolves bridge settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AgentConfig struct {
	Endpoint     string        `mapstructure:"endpoint" validate:"required,url"`
	ID           string        `mapstructure:"id" validate:"required"`
	APIKey       string        `mapstructure:"api_key"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type IntentConfig struct {
	WordBoundary bool `mapstructure:"word_boundary"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type Config struct {
	Agent   AgentConfig  `mapstructure:"agent"`
	Intent  IntentConfig `mapstructure:"intent"`
	Log     LogConfig    `mapstructure:"log"`
	Offline bool         `mapstructure:"offline"`
}

// envNames maps config keys to the environment variables that set them, in
// lookup order.
var envNames = map[string][]string{
	"agent.endpoint":       {"PROJECT_ENDPOINT"},
	"agent.id":             {"AGENT_ID"},
	"agent.api_key":        {"AGENT_API_KEY", "OPENAI_API_KEY"},
	"agent.poll_interval":  {"BRIDGE_POLL_INTERVAL"},
	"agent.timeout":        {"BRIDGE_TIMEOUT"},
	"intent.word_boundary": {"BRIDGE_WORD_BOUNDARY"},
	"log.level":            {"BRIDGE_LOG_LEVEL"},
	"log.format":           {"BRIDGE_LOG_FORMAT"},
	"offline":              {"BRIDGE_OFFLINE"},
}

type LoadOptions struct {
	ConfigFile string
	EnvFile    string // missing file is ignored
	// Overrides are applied last, e.g. from command-line flags.
	Overrides map[string]any
}

var ErrInvalid = errors.New("invalid configuration")

func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("agent.poll_interval", 500*time.Millisecond)
	v.SetDefault("agent.timeout", 5*time.Minute)
	v.SetDefault("intent.word_boundary", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("offline", false)
	for key, names := range envNames {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	}
	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg. Agent settings are only required when the bridge
// talks to the agent service.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	if err := validate.Struct(c.Log); err != nil {
		return describe(err, "log")
	}
	if c.Offline {
		return nil
	}
	if err := validate.Struct(c.Agent); err != nil {
		return describe(err, "agent")
	}
	return nil
}

func describe(err error, section string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := section + "." + fe.Field()
		name := key
		if envs, ok := envNames[key]; ok {
			name = envs[0]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", name))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q check (value %v)", name, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
