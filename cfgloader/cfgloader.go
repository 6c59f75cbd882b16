// Package cfgloader loads and validates application configuration at startup.
//
// Configuration is read from ./config/${ENVIRONMENT}.yaml with environment
// variable expansion, `default` tag defaults and `validate` tag validation.
// Any failure is fatal: a service with broken configuration must not start.
package cfgloader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rise-and-shine/crud/mask"
	"gopkg.in/yaml.v3"
)

// Recognized values of the ENVIRONMENT variable.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

// Option configures MustLoad behavior.
type Option func(*options)

type options struct {
	silent bool
}

// WithSilent disables printing the loaded configuration.
func WithSilent() Option {
	return func(o *options) { o.silent = true }
}

// MustLoad loads and validates configuration from a YAML file selected by the
// ENVIRONMENT variable. The file lives at ./config/${ENVIRONMENT}.yaml and
// maps to the struct via `yaml` tags; `default` tags fill absent fields and
// `validate` tags are enforced with go-playground/validator.
//
// Environment variable references in the file (${VAR} or $VAR) are expanded
// before unmarshaling; a .env file is loaded first when present.
//
// Unless WithSilent is given, the loaded configuration is printed with fields
// tagged `mask:"true"` redacted. Any failure exits the process.
func MustLoad[T any](opts ...Option) T {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var config T
	ensureNotPointer(config)

	_ = godotenv.Load()

	env := defineEnvironment()
	data := readConfigFile(fmt.Sprintf("./config/%s.yaml", env))
	data = []byte(os.ExpandEnv(string(data)))

	unmarshalConfig(data, &config, env)
	setDefaults(&config)
	validateConfig(&config, env)

	if !o.silent {
		printConfig(&config, env)
	}

	return config
}

func ensureNotPointer(config any) {
	if reflect.ValueOf(config).Kind() == reflect.Pointer {
		fatal("type argument must not be a pointer")
	}
}

func defineEnvironment() string {
	env := os.Getenv("ENVIRONMENT")
	valid := []string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}
	if !slices.Contains(valid, env) {
		fatal(fmt.Sprintf(
			"ENVIRONMENT variable is not set or invalid. Choices are: %s",
			strings.Join(valid, ", "),
		))
	}
	return env
}

func readConfigFile(path string) []byte {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fatal(fmt.Sprintf(
			"config file not found at %s - make sure a yaml file exists for each environment", path,
		))
	}
	if err != nil {
		fatal(fmt.Sprintf("failed to read config file %s: %v", path, err))
	}
	return data
}

func unmarshalConfig(data []byte, config any, env string) {
	if err := yaml.Unmarshal(data, config); err != nil {
		fatal(fmt.Sprintf("failed to unmarshal %s config file: %v", env, err))
	}
}

func setDefaults(config any) {
	if err := defaults.Set(config); err != nil {
		fatal(fmt.Sprintf("failed to set config defaults: %v", err))
	}
}

func validateConfig(config any, env string) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)
	if err == nil {
		return
	}

	failed := make([]string, 0)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint:errorlint // validator returns its error slice directly
		for _, fe := range errs {
			constraint := fe.Tag()
			if fe.Param() != "" {
				constraint += "=" + fe.Param()
			}
			failed = append(failed, fmt.Sprintf("%s: %s", fe.Namespace(), constraint))
		}
	}

	fatal(fmt.Sprintf("invalid fields in %s config -> %s", env, strings.Join(failed, ",  ")))
}

// printConfig logs the loaded configuration with masked fields redacted.
func printConfig(config any, env string) {
	rendered := mask.StructToOrdMap(config)

	out, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		slog.Error("[cfgloader]: failed to render config", "error", err.Error())
		return
	}
	slog.Info(fmt.Sprintf("[cfgloader]: loaded %s config:\n%s", env, string(out)))
}

func fatal(msg string) {
	slog.Error("[cfgloader]: " + msg)
	os.Exit(1)
}
