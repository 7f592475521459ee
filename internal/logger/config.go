// internal/logger/config.go
package logger

type Config struct {
	LogFile     string
	Development bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "curved.log",
		Development: false,
	}
}
