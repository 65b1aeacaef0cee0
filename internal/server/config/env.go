package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays Config fields from environment variables declared in the
// struct's env tags (DATABASE_DSN carries the connection string in typical
// deployments).
func parseEnv(config *Config) {
	if err := cleanenv.ReadEnv(config); err != nil {
		panic(err)
	}
}
