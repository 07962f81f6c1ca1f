package config

// Environment variables consulted by parseEnv.
const (
	EnvKeyPath  = "ENCRYPTION_KEY_PATH"
	EnvClientID = "SECUREDROP_CLIENT_ID"
	EnvDataDir  = "SECUREDROP_DATA_DIR"
)

func parseEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvKeyPath); v != "" {
		cfg.KeyPath = v
	}
	if v := getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}
	if v := getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
}
