// Package config loads typed configuration from the environment and from an
// optional YAML file.
//
// Structs describe their settings with `env` / `envDefault` tags (parsed by
// github.com/caarlos0/env/v11) and `yaml` tags (parsed by gopkg.in/yaml.v3).
// A .env file in the working directory, if present, is loaded once through
// github.com/joho/godotenv before the first parse.
//
// # Usage
//
//	type Config struct {
//	    BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api" yaml:"base_url"`
//	    Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s" yaml:"timeout"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }          // env only, cached per type
//	if err := config.LoadFile(path, &cfg); err != nil { ... } // env, then YAML overlay
//
// Precedence for LoadFile is: envDefault < environment < keys present in the
// file. A missing file is treated as empty.
package config
