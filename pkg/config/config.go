package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address   string `yaml:"address"`
		Port      int    `yaml:"port"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Storage struct {
		DBPath       string `yaml:"db_path"`
		DocumentsDir string `yaml:"documents_dir"`
	} `yaml:"storage"`
	Seal struct {
		KeyHex    string `yaml:"key_hex"`
		BackupDir string `yaml:"backup_dir"`
	} `yaml:"seal"`
	Curation struct {
		MinContentValue    float64 `yaml:"min_content_value"`
		MinLength          int     `yaml:"min_length"`
		MaxMessageLength   int     `yaml:"max_message_length"`
		DuplicateTolerance int     `yaml:"duplicate_tolerance"`
		FirstDelay         string  `yaml:"first_delay"`
		SteadyInterval     string  `yaml:"steady_interval"`
		BackoffInterval    string  `yaml:"backoff_interval"`
	} `yaml:"curation"`
	Participants []string `yaml:"participants"`
	Heartbeat    struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval"`
	} `yaml:"heartbeat"`
	Notify struct {
		WebhookURL string  `yaml:"webhook_url"`
		RPS        float64 `yaml:"rps"`
		Burst      int     `yaml:"burst"`
	} `yaml:"notify"`
	Retention struct {
		Cron       string `yaml:"cron"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"retention"`
	Logging struct {
		Level string `yaml:"level"`
		Sink  string `yaml:"sink"`
	} `yaml:"logging"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		if v == "" {
			return nil
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("CURATORD_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("CURATORD_ADDRESS"); host != "" {
			envUsed = true
			cfg.Server.Address = host
		}
		if port := os.Getenv("CURATORD_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("CURATORD_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Server.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("CURATORD_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Server.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("CURATORD_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CURATORD_DOCUMENTS_DIR"); v != "" {
		envUsed = true
		cfg.Storage.DocumentsDir = v
	}
	if v := os.Getenv("CURATORD_SEAL_KEY"); v != "" {
		envUsed = true
		cfg.Seal.KeyHex = v
	}
	if v := os.Getenv("CURATORD_SEAL_BACKUP_DIR"); v != "" {
		envUsed = true
		cfg.Seal.BackupDir = v
	}
	if v := os.Getenv("CURATORD_MIN_CONTENT_VALUE"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Curation.MinContentValue = f
		}
	}
	if v := os.Getenv("CURATORD_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Curation.MinLength = n
		}
	}
	if v := os.Getenv("CURATORD_MAX_MESSAGE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Curation.MaxMessageLength = n
		}
	}
	if v := os.Getenv("CURATORD_DUPLICATE_TOLERANCE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Curation.DuplicateTolerance = n
		}
	}
	if v := os.Getenv("CURATORD_PARTICIPANTS"); v != "" {
		envUsed = true
		cfg.Participants = parseList(v)
	}
	if v := os.Getenv("CURATORD_WEBHOOK_URL"); v != "" {
		envUsed = true
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("CURATORD_NOTIFY_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Notify.RPS = f
		}
	}
	if v := os.Getenv("CURATORD_NOTIFY_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Notify.Burst = n
		}
	}
	if v := os.Getenv("CURATORD_RETENTION_CRON"); v != "" {
		envUsed = true
		cfg.Retention.Cron = v
	}
	if v := os.Getenv("CURATORD_RETENTION_MAX_AGE_DAYS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Retention.MaxAgeDays = n
		}
	}
	if v := os.Getenv("CURATORD_HEARTBEAT"); v != "" {
		envUsed = true
		vl := strings.ToLower(strings.TrimSpace(v))
		cfg.Heartbeat.Enabled = vl == "1" || vl == "true" || vl == "yes"
	}
	if v := os.Getenv("CURATORD_HEARTBEAT_INTERVAL"); v != "" {
		envUsed = true
		cfg.Heartbeat.Interval = v
	}
	if v := os.Getenv("CURATORD_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CURATORD_LOG_SINK"); v != "" {
		envUsed = true
		cfg.Logging.Sink = v
	}
	return envUsed
}

// LoadEffective loads config from the given path and applies environment
// overrides. A missing file yields the zero config plus env values.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided value
// and the environment variable `CURATORD_CONFIG` when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("CURATORD_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
