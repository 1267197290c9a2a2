package config

import "strings"

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// ConfigServer настройки HTTP и gRPC серверов. Таймауты в секундах.
type ConfigServer struct {
	UseReflection           bool `mapstructure:"use_reflection"`
	PortGRPC                int  `mapstructure:"port_grpc" validate:"min=0,max=65535"`
	PortHTTP                int  `mapstructure:"port_http" validate:"min=1,max=65535"`
	HTTPReadTimeout         int  `mapstructure:"http_read_timeout" validate:"gt=0"`
	HTTPWriteTimeout        int  `mapstructure:"http_write_timeout" validate:"gt=0"`
	HTTPIdleTimeout         int  `mapstructure:"http_idle_timeout" validate:"gt=0"`
	HTTPReadHeaderTimeout   int  `mapstructure:"http_read_header_timeout" validate:"gt=0"`
	GracefulShutdownTimeout int  `mapstructure:"graceful_shutdown_timeout" validate:"gt=0"`
}

// ConfigStorage выбор хранилища
type ConfigStorage struct {
	Kind string `mapstructure:"kind" validate:"oneof=memory postgres"`
}

// ConfigDatabase подключение к PostgreSQL. Используется только при storage.kind=postgres.
type ConfigDatabase struct {
	Driver          string `mapstructure:"driver" validate:"oneof=postgres pgx"`
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"min=0"`
	InitSchema      bool   `mapstructure:"init_schema"`
}

// ConfigGateway внешние обертки HTTP сервера
type ConfigGateway struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age" validate:"min=0"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// Origins разбирает список origin через запятую.
func (g ConfigGateway) Origins() []string {
	var origins []string
	for _, o := range strings.Split(g.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Config основная структура конфигурации
type Config struct {
	Logger   ConfigLogger   `mapstructure:"logger"`
	Server   ConfigServer   `mapstructure:"server"`
	Storage  ConfigStorage  `mapstructure:"storage"`
	Database ConfigDatabase `mapstructure:"database"`
	Gateway  ConfigGateway  `mapstructure:"gateway"`
}
