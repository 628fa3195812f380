package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StartConfig holds the finances a new session starts with.
type StartConfig struct {
	Cash     int64
	Salary   int64
	Expenses int64
}

type APIConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	Start           StartConfig
	LogLevel        string
	IdempotencySize int
}

type CLIConfig struct {
	APIBaseURL string
	Start      StartConfig
}

// fileConfig is the optional YAML file named by CASHFLOW_CONFIG.
type fileConfig struct {
	Start struct {
		Cash     *int64 `yaml:"cash"`
		Salary   *int64 `yaml:"salary"`
		Expenses *int64 `yaml:"expenses"`
	} `yaml:"start"`
	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	file, err := loadFile(os.Getenv("CASHFLOW_CONFIG"))
	if err != nil {
		return APIConfig{}, err
	}

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("CASHFLOW_API_ADDR", file.API.Addr)
		if addr == "" {
			addr = ":8080"
		}
	}

	cfg := APIConfig{
		Addr:            addr,
		RequestTimeout:  envDurationDefault("CASHFLOW_REQUEST_TIMEOUT", 15*time.Second),
		Start:           startFromEnv(file),
		LogLevel:        strings.ToLower(envDefault("CASHFLOW_LOG_LEVEL", "info")),
		IdempotencySize: int(envInt64Default("CASHFLOW_IDEMPOTENCY_KEYS", 1024)),
	}
	if err := cfg.Start.Validate(); err != nil {
		return cfg, err
	}
	if cfg.IdempotencySize <= 0 {
		return cfg, fmt.Errorf("CASHFLOW_IDEMPOTENCY_KEYS must be > 0")
	}
	return cfg, nil
}

func LoadCLIFromEnv() (CLIConfig, error) {
	file, err := loadFile(os.Getenv("CASHFLOW_CONFIG"))
	if err != nil {
		return CLIConfig{}, err
	}
	cfg := CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("CF_API_BASE_URL", "http://localhost:8080"), "/"),
		Start:      startFromEnv(file),
	}
	return cfg, cfg.Start.Validate()
}

func (s StartConfig) Validate() error {
	if s.Cash < 0 {
		return fmt.Errorf("start cash must be >= 0")
	}
	if s.Salary < 0 {
		return fmt.Errorf("start salary must be >= 0")
	}
	if s.Expenses < 0 {
		return fmt.Errorf("start expenses must be >= 0")
	}
	return nil
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// startFromEnv resolves defaults, then file values, then env overrides.
func startFromEnv(file fileConfig) StartConfig {
	out := StartConfig{Cash: 5_000, Salary: 3_000, Expenses: 2_500}
	if file.Start.Cash != nil {
		out.Cash = *file.Start.Cash
	}
	if file.Start.Salary != nil {
		out.Salary = *file.Start.Salary
	}
	if file.Start.Expenses != nil {
		out.Expenses = *file.Start.Expenses
	}
	out.Cash = envInt64Default("CASHFLOW_START_CASH", out.Cash)
	out.Salary = envInt64Default("CASHFLOW_START_SALARY", out.Salary)
	out.Expenses = envInt64Default("CASHFLOW_START_EXPENSES", out.Expenses)
	return out
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
