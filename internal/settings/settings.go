// Package settings loads the configuration shared by todo-api and todo-ui.
package settings

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fluxorio/todolist/internal/client"
	"github.com/fluxorio/todolist/internal/store"
	"github.com/fluxorio/todolist/pkg/config"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/observability/otel"
)

// EnvPrefix prefixes every environment override, e.g. TODO_SERVER_ADDR
const EnvPrefix = "TODO"

// Environment names read as fallbacks when the TODO_ variables are unset
const (
	EnvMongoURI  = "MONGODB_URI"
	EnvClientURL = "REACT_APP_API_URL"
)

// DefaultSQLiteDSN is used when the sqlite3 driver has no DSN
const DefaultSQLiteDSN = "file:todos.db?_busy_timeout=5000"

//go:embed schema.json
var schemaSource string

// Settings is the full configuration document
type Settings struct {
	Server  Server       `yaml:"server" json:"server" toml:"server"`
	Store   store.Config `yaml:"store" json:"store" toml:"store"`
	Tracing Tracing      `yaml:"tracing" json:"tracing" toml:"tracing"`
	Client  Client       `yaml:"client" json:"client" toml:"client"`
	Log     Log          `yaml:"log" json:"log" toml:"log"`
}

// Server configures the HTTP listener
type Server struct {
	Addr            string        `yaml:"addr" json:"addr" toml:"addr"`
	Prefix          string        `yaml:"prefix" json:"prefix" toml:"prefix"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout" toml:"shutdownTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" json:"allowedOrigins" toml:"allowedOrigins"`
	ExposePanics    bool          `yaml:"exposePanics" json:"exposePanics" toml:"exposePanics"`
}

// Tracing selects the span exporter
type Tracing struct {
	Exporter    string  `yaml:"exporter" json:"exporter" toml:"exporter"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint" toml:"endpoint"`
	SampleRate  float64 `yaml:"sampleRate" json:"sampleRate" toml:"sampleRate"`
	Environment string  `yaml:"environment" json:"environment" toml:"environment"`
}

// Client configures the terminal UI
type Client struct {
	BaseURL string `yaml:"baseURL" json:"baseURL" toml:"baseURL"`
	LogFile string `yaml:"logFile" json:"logFile" toml:"logFile"`
}

// Log configures diagnostics
type Log struct {
	Debug bool `yaml:"debug" json:"debug" toml:"debug"`
}

// Defaults returns a configuration that needs no file and no environment
func Defaults() *Settings {
	return &Settings{
		Server: Server{
			Addr:            ":5000",
			Prefix:          "/api",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: store.Config{
			Driver:   store.DriverSQLite,
			MaxConns: 10,
		},
		Tracing: Tracing{
			Exporter:    otel.ExporterNone,
			SampleRate:  1,
			Environment: "development",
		},
		Client: Client{
			LogFile: "todo-ui.log",
		},
	}
}

// Load reads path (YAML, JSON or TOML by extension; a missing file is
// ignored), applies TODO_* overrides and the legacy fallbacks, then
// validates the result.
func Load(path string) (*Settings, error) {
	s := Defaults()
	if err := config.LoadOptional(path, EnvPrefix, s); err != nil {
		return nil, err
	}
	if err := s.applyFallbacks(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyFallbacks() error {
	if s.Store.DSN == "" {
		if uri := os.Getenv(EnvMongoURI); uri != "" {
			driver, ok := DriverForDSN(uri)
			if !ok {
				return core.NewError(core.CodeInvalidConfig,
					fmt.Sprintf("%s has no supported store driver; set %s_STORE_DRIVER and %s_STORE_DSN", EnvMongoURI, EnvPrefix, EnvPrefix))
			}
			s.Store.DSN = uri
			s.Store.Driver = driver
		}
	}
	if s.Store.DSN == "" && s.Store.Driver == store.DriverSQLite {
		s.Store.DSN = DefaultSQLiteDSN
	}

	if s.Client.BaseURL == "" {
		s.Client.BaseURL = os.Getenv(EnvClientURL)
	}
	if s.Client.BaseURL == "" {
		s.Client.BaseURL = client.DefaultBaseURL
	}
	return nil
}

// DriverForDSN picks a driver from the DSN scheme
func DriverForDSN(dsn string) (string, bool) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return store.DriverPgx, true
	case "nats", "tls":
		return store.DriverNATS, true
	case "file":
		return store.DriverSQLite, true
	}
	return "", false
}

// Validate checks required fields, enumerations and the JSON schema
func (s *Settings) Validate() error {
	schema, err := config.CompileSchema("settings.json", schemaSource)
	if err != nil {
		return err
	}

	drivers := make([]interface{}, len(store.Drivers))
	for i, d := range store.Drivers {
		drivers[i] = d
	}

	if err := config.Validate(s,
		config.RequiredFields("Server.Addr", "Store.Driver"),
		config.OneOfValidator("Store.Driver", drivers...),
		config.OneOfValidator("Tracing.Exporter", otel.ExporterNone, otel.ExporterStdout, otel.ExporterZipkin),
		config.RangeValidator("Tracing.SampleRate", 0, 1),
		schema,
	); err != nil {
		return core.WrapError(core.CodeInvalidConfig, "invalid settings", err)
	}
	return nil
}
