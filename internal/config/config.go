// Package config loads tcptalk settings. Sources are layered, later ones
// winning: built-in defaults, an optional YAML file, a .env file in the
// working directory, TCPTALK_* environment variables. Command-line flags
// are applied on top by the binaries before Validate is called.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/omochice/tcptalk/internal/client"
	"github.com/omochice/tcptalk/pkg/protocol"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "TCPTALK_"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Server configures tcptalk-server.
type Server struct {
	ListenAddr     string `yaml:"listen" validate:"required,hostname_port"`
	WSListenAddr   string `yaml:"ws_listen" validate:"omitempty,hostname_port"`
	ReadBufferSize int    `yaml:"read_buffer_size" validate:"min=64,max=65536"`
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string `yaml:"log_format" validate:"oneof=console json"`
}

// Client configures the tcptalk terminal client.
type Client struct {
	Host          string        `yaml:"host" validate:"required"`
	Port          int           `yaml:"port" validate:"min=1,max=65535"`
	Transport     string        `yaml:"transport" validate:"oneof=tcp ws"`
	Username      string        `yaml:"username"`
	BlinkInterval time.Duration `yaml:"blink_interval" validate:"min=10ms"`
	LogFile       string        `yaml:"log_file"`
	LogLevel      string        `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// DefaultServer returns the server defaults.
func DefaultServer() *Server {
	return &Server{
		ListenAddr:     "0.0.0.0:" + strconv.Itoa(protocol.DefaultPort),
		ReadBufferSize: protocol.ReadBufferSize,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// DefaultClient returns the client defaults.
func DefaultClient() *Client {
	return &Client{
		Host:          "localhost",
		Port:          protocol.DefaultPort,
		Transport:     "tcp",
		BlinkInterval: client.DefaultTickInterval,
		LogLevel:      "info",
	}
}

// LoadServer builds a Server from defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func LoadServer(path string) (*Server, error) {
	cfg := DefaultServer()
	if err := load(path, cfg); err != nil {
		return nil, err
	}

	var errs []error
	envString("LISTEN", &cfg.ListenAddr)
	envString("WS_LISTEN", &cfg.WSListenAddr)
	errs = append(errs, envInt("READ_BUFFER_SIZE", &cfg.ReadBufferSize))
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient builds a Client from defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func LoadClient(path string) (*Client, error) {
	cfg := DefaultClient()
	if err := load(path, cfg); err != nil {
		return nil, err
	}

	var errs []error
	envString("HOST", &cfg.Host)
	errs = append(errs, envInt("PORT", &cfg.Port))
	envString("TRANSPORT", &cfg.Transport)
	envString("USERNAME", &cfg.Username)
	errs = append(errs, envDuration("BLINK_INTERVAL", &cfg.BlinkInterval))
	envString("LOG_FILE", &cfg.LogFile)
	envString("LOG_LEVEL", &cfg.LogLevel)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the final server settings.
func (c *Server) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}

// Validate checks the final client settings.
func (c *Client) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

func load(path string, out any) error {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Variables already in the environment take precedence over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}
