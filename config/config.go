package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type SystemConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Demo     bool   `yaml:"demo"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// PosConfig carries point-of-sale tunables.
type PosConfig struct {
	// ScanDebounceMs is the window within which a repeated scan of the
	// same product is treated as scanner noise.
	ScanDebounceMs int `yaml:"scan_debounce_ms"`
	// ImportMaxBytes caps the accepted CSV file size before parsing.
	ImportMaxBytes int64 `yaml:"import_max_bytes"`
	// ImportMaxRows caps the accepted CSV data row count before parsing.
	ImportMaxRows int `yaml:"import_max_rows"`
}

type AppConfig struct {
	System SystemConfig `yaml:"system"`
	Web    WebConfig    `yaml:"web"`
	Logger LogConfig    `yaml:"logger"`
	Pos    PosConfig    `yaml:"pos"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SystemConfig{
			Appid:    "fairpos",
			Location: "Asia/Taipei",
			Workdir:  "/var/fairpos",
			Demo:     false,
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 1835,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/fairpos/fairpos.log",
		},
		Pos: PosConfig{
			ScanDebounceMs: 500,
			ImportMaxBytes: 1 << 20,
			ImportMaxRows:  2000,
		},
	}
}

// LoadConfig reads the YAML configuration file, overlaying values on the
// defaults. A missing file is not an error.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(cfile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", cfile)
	}
	return cfg, nil
}

// DBFile returns the bbolt database path under the workdir.
func (c *AppConfig) DBFile() string {
	return filepath.Join(c.System.Workdir, "fairpos.db")
}

func (c *AppConfig) InitDirs() error {
	return os.MkdirAll(c.System.Workdir, 0o755)
}
