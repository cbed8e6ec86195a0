package cli

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended by viper to every bound variable, so the
// environment surface is LABRADOR_ENGINE, LABRADOR_PREVIEW, and so on.
const envPrefix = "LABRADOR"

// Config is the process configuration, sourced from the environment (and an
// optional .env file). Command-line flags are applied on top by the caller.
type Config struct {
	Engine       string `mapstructure:"ENGINE" validate:"required"`
	OutputSuffix string `mapstructure:"OUTPUT_SUFFIX" validate:"required"`
	JPEGQuality  int    `mapstructure:"JPEG_QUALITY" validate:"min=1,max=100"`
	Preview      string `mapstructure:"PREVIEW" validate:"oneof=auto always never"`
	UpdateRepo   string `mapstructure:"UPDATE_REPO" validate:"required"`
	Debug        bool   `mapstructure:"DEBUG"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			viper.BindEnv(tag)
		}
	}
}

// LoadConfig reads the optional .env file, binds LABRADOR_* environment
// variables, applies defaults, and validates the result.
func LoadConfig() (*Config, error) {
	// a missing .env file is the normal case
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	bindEnv(Config{})
	viper.AutomaticEnv()

	viper.SetDefault("ENGINE", "std")
	viper.SetDefault("OUTPUT_SUFFIX", "adjusted")
	viper.SetDefault("JPEG_QUALITY", 92)
	viper.SetDefault("PREVIEW", "auto")
	viper.SetDefault("UPDATE_REPO", "pictools/labrador")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
