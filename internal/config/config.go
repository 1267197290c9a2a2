package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения: server.port_http -> FILMORATE_SERVER_PORT_HTTP.
const EnvPrefix = "FILMORATE"

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults расширяет переменные окружения с поддержкой дефолтных значений
// Формат: ${VAR:-default}
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		matches := envPattern.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}
		if value := os.Getenv(matches[1]); value != "" {
			return value
		}
		return defaultValue
	})
}

// setDefaults значения, с которыми сервис стартует без файла конфигурации.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")

	v.SetDefault("server.use_reflection", true)
	v.SetDefault("server.port_http", 8080)
	v.SetDefault("server.port_grpc", 9090)
	v.SetDefault("server.http_read_timeout", 5)
	v.SetDefault("server.http_write_timeout", 10)
	v.SetDefault("server.http_idle_timeout", 120)
	v.SetDefault("server.http_read_header_timeout", 5)
	v.SetDefault("server.graceful_shutdown_timeout", 10)

	v.SetDefault("storage.kind", "memory")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.init_schema", true)

	v.SetDefault("gateway.cors_allowed_origins", "*")
	v.SetDefault("gateway.cors_max_age", 300)
	v.SetDefault("gateway.rate_limit_rps", 100)
	v.SetDefault("gateway.rate_limit_burst", 50)
}

// InitConfig читает конфигурационный файл и возвращает экземпляр конфигурации.
// Отсутствующий файл не ошибка: остаются значения по умолчанию и окружение.
func InitConfig[C any](configFile string, defaults func(*viper.Viper)) (*C, error) {
	v := viper.New()
	if defaults != nil {
		defaults(v)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			v.SetConfigType(strings.TrimLeft(filepath.Ext(configFile), "."))
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("v.ReadInConfig: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	// Заменяем переменные окружения формата ${VAR:-default} на их значения
	for _, k := range v.AllKeys() {
		value := v.GetString(k)
		if value == "" {
			continue
		}
		expanded := expandEnvWithDefaults(value)

		if expanded == "true" || expanded == "false" {
			boolValue, _ := strconv.ParseBool(expanded)
			v.Set(k, boolValue)
		} else if intValue, err := strconv.Atoi(expanded); err == nil {
			v.Set(k, intValue)
		} else {
			v.Set(k, expanded)
		}
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	return cfg, nil
}

// Load читает и проверяет конфигурацию сервиса.
func Load(configFile string) (*Config, error) {
	cfg, err := InitConfig[Config](configFile, setDefaults)
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Storage.Kind == "postgres" && cfg.Database.DSN == "" {
		return nil, errors.New("invalid config: database.dsn is required for postgres storage")
	}
	return cfg, nil
}
