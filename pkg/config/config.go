package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	parseOnce   sync.Once
)

// MustNew is New for startup code: a configuration error is fatal.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New exports the .env file named by -env (or ./.env when it exists) into the
// process environment, then fills T from the variables under prefix.
func New[T any](prefix string) (*T, error) {
	filepath := resolveEnvPath()
	if filepath != "" {
		if err := LoadEnvFile(filepath); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := loadEnvFileIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	return Process[T](prefix)
}

// Process fills T from the current environment only.
func Process[T any](prefix string) (*T, error) {
	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process %s config: %w", displayPrefix(prefix), err)
	}
	return &conf, nil
}

// LoadEnvFile exports every key of a dotenv file as an upper-case variable.
// Variables already set in the environment are left alone.
func LoadEnvFile(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}

func resolveEnvPath() string {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFilePath)
}

func loadEnvFileIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return LoadEnvFile(filepath)
}

func displayPrefix(prefix string) string {
	if prefix == "" {
		return "app"
	}
	return prefix
}
