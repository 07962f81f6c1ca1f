// Package config loads runtime configuration for the SecureDrop CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: ENCRYPTION_KEY_PATH, SECUREDROP_CLIENT_ID, SECUREDROP_DATA_DIR.
//  4. Command-line flags and the positional client id.
//
// Supported flags
//
//	-k string   encryption key file (default <data dir>/encryption.key)
//	-d string   data directory (default ".")
//	-b string   record store backend: json or sqlite
//	-strict     treat unparsable store files as errors
//
// # JSON schema
//
//	{
//	  "client_id": "alice",
//	  "key_path": "/var/lib/securedrop/encryption.key",
//	  "data_dir": "/var/lib/securedrop",
//	  "backend": "json",
//	  "hash_algorithm": "bcrypt",
//	  "bcrypt_cost": 12,
//	  "max_login_attempts": 3,
//	  "session_ttl": "30m",
//	  "strict_store": false,
//	  "log_level": "warn"
//	}
//
// A missing client id is reported as common.ErrConfiguration before any
// file is touched.
package config
