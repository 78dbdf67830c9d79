package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath config file used when --config is not given and the file exists.
	DefaultPath = "Settings.yaml"
	// DefaultEnvFile optional dotenv file merged below the process environment.
	DefaultEnvFile = ".env"
	// EnvPrefix prefix of environment overrides, e.g. APP_SYMBOL.
	EnvPrefix = "APP_"

	SourceHTTP    = "http"
	SourceBinance = "binance"

	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"

	defaultDepthLimit   = 10
	defaultPollInterval = 10 * time.Second
	defaultTimeout      = 10 * time.Second
	defaultEnvironment  = "production"
	defaultOutputFile   = "orderbook.log"
	maxDepthLimit       = 5000
)

// ConfigError reports an invalid or missing configuration key.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// Config immutable settings of one watcher process.
type Config struct {
	APIKey        string
	APIURL        string
	Symbol        string
	DepthLimit    int
	PollInterval  time.Duration
	Timeout       time.Duration
	Environment   string
	Source        string
	Output        string
	OutputFile    string
	FetchPrice    bool
	LogFile       string
	LogLevel      string
	DashboardAddr string
}

// WritesConsole reports whether rendered snapshots go to stdout.
func (c Config) WritesConsole() bool {
	return c.Output == OutputConsole || c.Output == OutputBoth
}

// WritesFile reports whether rendered snapshots are appended to OutputFile.
func (c Config) WritesFile() bool {
	return c.Output == OutputFile || c.Output == OutputBoth
}

// Development reports whether the process runs in a development environment.
func (c Config) Development() bool {
	return strings.EqualFold(c.Environment, "development") || strings.EqualFold(c.Environment, "dev")
}

// ConfigTmp raw YAML representation; pointers distinguish absent keys from zero values.
type ConfigTmp struct {
	APIKey              string `yaml:"api_key,omitempty"`
	APIURL              string `yaml:"api_url"`
	Symbol              string `yaml:"symbol"`
	DepthLimit          *int   `yaml:"depth_limit,omitempty"`
	PollIntervalSeconds *int   `yaml:"poll_interval_seconds,omitempty"`
	TimeoutSeconds      *int   `yaml:"timeout_seconds,omitempty"`
	Environment         string `yaml:"environment,omitempty"`
	Source              string `yaml:"source,omitempty"`
	Output              string `yaml:"output,omitempty"`
	OutputFile          string `yaml:"output_file,omitempty"`
	FetchPrice          *bool  `yaml:"fetch_price,omitempty"`
	LogFile             string `yaml:"log_file,omitempty"`
	LogLevel            string `yaml:"log_level,omitempty"`
	DashboardAddr       string `yaml:"dashboard_addr,omitempty"`
}

type lookupFunc func(key string) (string, bool)

// Load merges, in increasing priority: defaults, the YAML file at path, the .env file
// and APP_* environment variables. An empty path falls back to DefaultPath if present.
func Load(path string) (Config, error) {
	return load(path, DefaultEnvFile, os.LookupEnv)
}

func load(path, envFile string, lookup lookupFunc) (Config, error) {
	var tmp ConfigTmp

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := readYaml(path, &tmp); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return Config{}, err
	}

	env := func(key string) (string, bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}

	if err := applyEnv(&tmp, env); err != nil {
		return Config{}, err
	}

	return tmp.build()
}

func readYaml(path string, tmp *ConfigTmp) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(f, tmp); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read env file %s", path)
	}
	return values, nil
}

func applyEnv(tmp *ConfigTmp, env lookupFunc) error {
	strs := map[string]*string{
		"API_KEY":        &tmp.APIKey,
		"API_URL":        &tmp.APIURL,
		"SYMBOL":         &tmp.Symbol,
		"ENVIRONMENT":    &tmp.Environment,
		"SOURCE":         &tmp.Source,
		"OUTPUT":         &tmp.Output,
		"OUTPUT_FILE":    &tmp.OutputFile,
		"LOG_FILE":       &tmp.LogFile,
		"LOG_LEVEL":      &tmp.LogLevel,
		"DASHBOARD_ADDR": &tmp.DashboardAddr,
	}
	for key, dst := range strs {
		if v, ok := env(key); ok {
			*dst = v
		}
	}

	ints := map[string]**int{
		"DEPTH_LIMIT":           &tmp.DepthLimit,
		"POLL_INTERVAL_SECONDS": &tmp.PollIntervalSeconds,
		"TIMEOUT_SECONDS":       &tmp.TimeoutSeconds,
	}
	for key, dst := range ints {
		v, ok := env(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Key: strings.ToLower(key), Reason: fmt.Sprintf("%s%s must be an integer, got %q", EnvPrefix, key, v)}
		}
		*dst = &n
	}

	if v, ok := env("FETCH_PRICE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Key: "fetch_price", Reason: fmt.Sprintf("%sFETCH_PRICE must be a boolean, got %q", EnvPrefix, v)}
		}
		tmp.FetchPrice = &b
	}

	return nil
}

func (c ConfigTmp) build() (Config, error) {
	conf := Config{
		APIKey:        c.APIKey,
		APIURL:        strings.TrimSpace(c.APIURL),
		DepthLimit:    defaultDepthLimit,
		PollInterval:  defaultPollInterval,
		Timeout:       defaultTimeout,
		Environment:   defaultEnvironment,
		Source:        SourceHTTP,
		Output:        OutputConsole,
		OutputFile:    defaultOutputFile,
		FetchPrice:    true,
		LogFile:       c.LogFile,
		LogLevel:      c.LogLevel,
		DashboardAddr: c.DashboardAddr,
	}

	if conf.APIURL == "" {
		return Config{}, &ConfigError{Key: "api_url", Reason: "is required"}
	}
	if !strings.HasPrefix(conf.APIURL, "http://") && !strings.HasPrefix(conf.APIURL, "https://") {
		return Config{}, &ConfigError{Key: "api_url", Reason: fmt.Sprintf("must be an http(s) URL, got %q", conf.APIURL)}
	}

	symbol, err := normalizeSymbol(c.Symbol)
	if err != nil {
		return Config{}, err
	}
	conf.Symbol = symbol

	if c.DepthLimit != nil {
		if *c.DepthLimit < 1 || *c.DepthLimit > maxDepthLimit {
			return Config{}, &ConfigError{Key: "depth_limit", Reason: fmt.Sprintf("must be between 1 and %d, got %d", maxDepthLimit, *c.DepthLimit)}
		}
		conf.DepthLimit = *c.DepthLimit
	}

	if c.PollIntervalSeconds != nil {
		if *c.PollIntervalSeconds <= 0 {
			return Config{}, &ConfigError{Key: "poll_interval_seconds", Reason: fmt.Sprintf("must be positive, got %d", *c.PollIntervalSeconds)}
		}
		conf.PollInterval = time.Duration(*c.PollIntervalSeconds) * time.Second
	}

	if c.TimeoutSeconds != nil {
		if *c.TimeoutSeconds <= 0 {
			return Config{}, &ConfigError{Key: "timeout_seconds", Reason: fmt.Sprintf("must be positive, got %d", *c.TimeoutSeconds)}
		}
		conf.Timeout = time.Duration(*c.TimeoutSeconds) * time.Second
	}

	if c.Environment != "" {
		conf.Environment = c.Environment
	}

	if c.Source != "" {
		conf.Source = strings.ToLower(c.Source)
	}
	if conf.Source != SourceHTTP && conf.Source != SourceBinance {
		return Config{}, &ConfigError{Key: "source", Reason: fmt.Sprintf("must be %q or %q, got %q", SourceHTTP, SourceBinance, c.Source)}
	}

	if c.Output != "" {
		conf.Output = strings.ToLower(c.Output)
	}
	switch conf.Output {
	case OutputConsole, OutputFile, OutputBoth:
	default:
		return Config{}, &ConfigError{Key: "output", Reason: fmt.Sprintf("must be one of console, file, both, got %q", c.Output)}
	}

	if c.OutputFile != "" {
		conf.OutputFile = c.OutputFile
	}

	if c.FetchPrice != nil {
		conf.FetchPrice = *c.FetchPrice
	}

	return conf, nil
}

// normalizeSymbol accepts BNBUSDC, bnbusdc, BNB_USDC or BNB/USDC.
func normalizeSymbol(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ConfigError{Key: "symbol", Reason: "is required"}
	}

	pairElements := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '/' })
	if len(pairElements) > 2 {
		return "", &ConfigError{Key: "symbol", Reason: fmt.Sprintf("invalid symbol %q", s)}
	}
	symbol := strings.ToUpper(strings.Join(pairElements, ""))
	if symbol == "" {
		return "", &ConfigError{Key: "symbol", Reason: fmt.Sprintf("invalid symbol %q", s)}
	}
	for _, r := range symbol {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", &ConfigError{Key: "symbol", Reason: fmt.Sprintf("invalid symbol %q", s)}
		}
	}

	return symbol, nil
}

// Marshal renders a config file that Load reads back into the same settings.
func Marshal(tmp ConfigTmp) ([]byte, error) {
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return nil, errors.Wrap(err, "generate yaml")
	}
	return data, nil
}
