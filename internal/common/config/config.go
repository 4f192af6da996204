package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"cad-exporter/internal/exporter/models"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Export  ExportConfig  `yaml:"export"`
}

type ServerConfig struct {
	Port         string   `yaml:"port"`
	Environment  string   `yaml:"env"`
	ReadTimeout  int      `yaml:"read_timeout"`
	WriteTimeout int      `yaml:"write_timeout"`
	BodyLimitMB  int      `yaml:"body_limit_mb"`
	CORSOrigins  []string `yaml:"cors_origins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ExportConfig задаёт параметры выгрузки по умолчанию; запрос может их переопределить.
type ExportConfig struct {
	ProjectName string             `yaml:"project_name"`
	IFC         models.IFCSettings `yaml:"ifc"`
	DXF         models.DXFSettings `yaml:"dxf"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	insUnits := 4
	bake := false
	return &Config{
		Server: ServerConfig{
			Port:         "3003",
			Environment:  "development",
			ReadTimeout:  10,
			WriteTimeout: 30,
			BodyLimitMB:  64,
			CORSOrigins:  []string{"*"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Export: ExportConfig{
			ProjectName: "Project",
			IFC: models.IFCSettings{
				Schema:    "IFC4",
				Format:    "tfs",
				BakeWorld: &bake,
			},
			DXF: models.DXFSettings{
				Version:  "AC1009",
				Scale:    1,
				InsUnits: &insUnits,
			},
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию < YAML файл < переменные окружения.
// При пустом path файл не читается.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	overrideString(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Server.Environment, "ENV")
	overrideInt(&cfg.Server.ReadTimeout, "READ_TIMEOUT")
	overrideInt(&cfg.Server.WriteTimeout, "WRITE_TIMEOUT")
	overrideString(&cfg.Logging.Level, "LOG_LEVEL")
	overrideString(&cfg.Logging.File, "LOG_FILE")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		var list []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		if len(list) > 0 {
			cfg.Server.CORSOrigins = list
		}
	}
}

// overrideString заменяет dst непустым значением переменной окружения.
func overrideString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*dst = value
	}
}

// overrideInt заменяет dst, только если переменная разбирается как целое.
func overrideInt(dst *int, key string) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		*dst = n
	}
}
