package main

import (
	"os"
	"path/filepath"

	"github.com/gotodo/todokit/pkg/apiclient"
	"github.com/gotodo/todokit/pkg/kv"
	"github.com/gotodo/todokit/pkg/session"
	"github.com/gotodo/todokit/pkg/todo"
)

// appConfig is the CLI configuration: environment variables, overlaid by
// the YAML file named by -config or TODO_CONFIG_FILE.
type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development" yaml:"env"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" yaml:"log_format"`

	API     apiclient.Config `yaml:"api"`
	Storage kv.Config        `yaml:"storage"`
	Session session.Config   `yaml:"session"`
	Todo    todo.Config      `yaml:"todo"`
}

func defaultConfigFile() string {
	if p := os.Getenv("TODO_CONFIG_FILE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, "gotodo", "config.yaml")
}
