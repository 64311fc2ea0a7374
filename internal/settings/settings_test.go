package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fluxorio/todolist/internal/client"
	"github.com/fluxorio/todolist/internal/store"
	"github.com/fluxorio/todolist/pkg/core"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix+"_") || name == EnvMongoURI || name == EnvClientURL {
			t.Setenv(name, "")
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Server.Addr != ":5000" || s.Server.Prefix != "/api" {
		t.Errorf("server = %+v", s.Server)
	}
	if s.Store.Driver != store.DriverSQLite || s.Store.DSN != DefaultSQLiteDSN {
		t.Errorf("store = %+v", s.Store)
	}
	if s.Client.BaseURL != client.DefaultBaseURL {
		t.Errorf("client base URL = %q", s.Client.BaseURL)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"settings.yaml", `
server:
  addr: ":8080"
  prefix: ""
  shutdownTimeout: 3s
  allowedOrigins: ["http://localhost:3000"]
store:
  driver: memory
`},
		{"settings.json", `{
  "server": {"addr": ":8080", "prefix": "", "shutdownTimeout": 3000000000, "allowedOrigins": ["http://localhost:3000"]},
  "store": {"driver": "memory"}
}`},
		{"settings.toml", `
[server]
addr = ":8080"
prefix = ""
shutdownTimeout = "3s"
allowedOrigins = ["http://localhost:3000"]

[store]
driver = "memory"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			s, err := Load(writeFile(t, tt.name, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			want := Server{Addr: ":8080", Prefix: "", ShutdownTimeout: 3 * time.Second, AllowedOrigins: []string{"http://localhost:3000"}}
			if !reflect.DeepEqual(s.Server, want) {
				t.Errorf("server = %+v, want %+v", s.Server, want)
			}
			if s.Store.Driver != store.DriverMemory || s.Store.DSN != "" {
				t.Errorf("store = %+v", s.Store)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_SERVER_ADDR", ":9000")
	t.Setenv("TODO_STORE_DRIVER", "nats")
	t.Setenv("TODO_STORE_DSN", "nats://127.0.0.1:4222")
	t.Setenv("TODO_CLIENT_BASEURL", "http://api.local/api")
	t.Setenv("TODO_TRACING_SAMPLERATE", "0.25")
	t.Setenv("TODO_LOG_DEBUG", "true")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Server.Addr != ":9000" || s.Store.Driver != store.DriverNATS || s.Store.DSN != "nats://127.0.0.1:4222" {
		t.Errorf("settings = %+v", s)
	}
	if s.Client.BaseURL != "http://api.local/api" || s.Tracing.SampleRate != 0.25 || !s.Log.Debug {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoad_LegacyFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMongoURI, "postgres://todo@localhost/todo")
	t.Setenv(EnvClientURL, "http://legacy:5000/api")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Store.Driver != store.DriverPgx || s.Store.DSN != "postgres://todo@localhost/todo" {
		t.Errorf("store = %+v", s.Store)
	}
	if s.Client.BaseURL != "http://legacy:5000/api" {
		t.Errorf("base URL = %q", s.Client.BaseURL)
	}

	// TODO_ variables win over the fallbacks
	t.Setenv("TODO_CLIENT_BASEURL", "http://new/api")
	s, err = Load("")
	if err != nil || s.Client.BaseURL != "http://new/api" {
		t.Errorf("base URL = %q, %v", s.Client.BaseURL, err)
	}
}

func TestLoad_MongoURIUnsupported(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMongoURI, "mongodb://localhost:27017/todo")

	_, err := Load("")
	if !errors.Is(err, core.NewError(core.CodeInvalidConfig, "")) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown driver", "store:\n  driver: mongo\n", "Store.Driver"},
		{"bad exporter", "tracing:\n  exporter: jaeger\n", "Tracing.Exporter"},
		{"sample rate", "tracing:\n  sampleRate: 2\n", "Tracing.SampleRate"},
		{"empty addr", "server:\n  addr: \"\"\n", "Server.Addr"},
		{"relative prefix", "server:\n  prefix: api\n", "/server/prefix"},
		{"bad bucket", "store:\n  driver: nats\n  bucket: \"a.b\"\n", "/store/bucket"},
		{"unknown key", "server:\n  port: 80\n", "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, "settings.yaml", tt.content))
			if err == nil {
				t.Fatal("Load() succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDriverForDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
		ok     bool
	}{
		{"postgres://u@h/db", store.DriverPgx, true},
		{"postgresql://u@h/db", store.DriverPgx, true},
		{"nats://localhost:4222", store.DriverNATS, true},
		{"file:todos.db", store.DriverSQLite, true},
		{"mongodb://localhost", "", false},
		{"::bad", "", false},
	}
	for _, tt := range tests {
		driver, ok := DriverForDSN(tt.dsn)
		if driver != tt.driver || ok != tt.ok {
			t.Errorf("DriverForDSN(%q) = %q, %v", tt.dsn, driver, ok)
		}
	}
}
