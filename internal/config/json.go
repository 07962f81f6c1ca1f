package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/flagx"
	"github.com/dmitrijs2005/securedrop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from zero values so a partial file only overrides
// what it names.
type JsonConfig struct {
	ClientID         *string         `json:"client_id"`
	KeyPath          *string         `json:"key_path"`
	DataDir          *string         `json:"data_dir"`
	Backend          *string         `json:"backend"`
	HashAlgorithm    *string         `json:"hash_algorithm"`
	BcryptCost       *int            `json:"bcrypt_cost"`
	MaxLoginAttempts *int            `json:"max_login_attempts"`
	SessionTTL       *timex.Duration `json:"session_ttl"`
	StrictStore      *bool           `json:"strict_store"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson overlays cfg with values from the file named by -c / -config.
// Without either flag nothing happens.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", common.ErrConfiguration, jsonConfigFile, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", common.ErrConfiguration, jsonConfigFile, err)
	}

	setIf(&cfg.ClientID, jc.ClientID)
	setIf(&cfg.KeyPath, jc.KeyPath)
	setIf(&cfg.DataDir, jc.DataDir)
	setIf(&cfg.Backend, jc.Backend)
	setIf(&cfg.HashAlgorithm, jc.HashAlgorithm)
	setIf(&cfg.BcryptCost, jc.BcryptCost)
	setIf(&cfg.MaxLoginAttempts, jc.MaxLoginAttempts)
	setIf(&cfg.StrictStore, jc.StrictStore)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
