package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the payload cache configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// FedEx holds the live carrier API configuration.
	FedEx FedExConfig `mapstructure:",squash"`

	// Replay holds the recorded payload store configuration.
	Replay ReplayConfig `mapstructure:",squash"`

	// Rules holds the classification rule knobs.
	Rules RulesConfig `mapstructure:",squash"`
}

// RedisConfig holds the payload cache connection details.
type RedisConfig struct {
	// URL is the Redis connection string.
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// PayloadTTLSeconds is how long fetched carrier payloads stay cached.
	PayloadTTLSeconds int `mapstructure:"PAYLOAD_CACHE_TTL_SECONDS" default:"900"`
}

// FedExConfig holds the FedEx Track API credentials and endpoint.
// When ClientID/ClientSecret are empty the service runs in replay-only mode.
type FedExConfig struct {
	// APIURL is the base URL of the Track API.
	APIURL string `mapstructure:"FEDEX_API_URL" default:"https://apis.fedex.com"`
	// ClientID is the OAuth client credential id.
	ClientID string `mapstructure:"FEDEX_CLIENT_ID"`
	// ClientSecret is the OAuth client credential secret.
	ClientSecret string `mapstructure:"FEDEX_CLIENT_SECRET"`
}

// HasCredentials reports whether live carrier calls are possible.
func (c FedExConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ReplayConfig holds the recorded payload store settings.
type ReplayConfig struct {
	// Dir is the directory of <trackingNumber>.json recorded payloads.
	Dir string `mapstructure:"REPLAY_DIR" default:"./replays"`
}

// RulesConfig holds the classification rule knobs.
type RulesConfig struct {
	// StalledThresholdDays is the minimum event age for the stalled indicator.
	StalledThresholdDays int `mapstructure:"STALLED_THRESHOLD_DAYS" default:"4"`
	// IncludeStalledReason controls whether Stalled appears in CalculatedReasons.
	IncludeStalledReason bool `mapstructure:"INCLUDE_STALLED_REASON" default:"true"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
