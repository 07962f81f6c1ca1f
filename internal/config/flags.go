package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/flagx"
)

var valueFlags = []string{"-k", "-d", "-b", "-c", "-config", "--config"}

// parseFlags applies command-line flags and the positional client id:
//
//	securedrop [-k keyfile] [-d datadir] [-b json|sqlite] [-strict] [-c config.json] <client_id>
//
// Flags may appear before or after the client id.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-k", "-d", "-b"})

	fs := flag.NewFlagSet("securedrop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.KeyPath, "k", cfg.KeyPath, "path to the encryption key file")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory holding the client stores")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "record store backend (json or sqlite)")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	// -strict is boolean, so FilterArgs must not pair it with the next argument.
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "-"), "=")
		if name != "strict" && name != "-strict" {
			continue
		}
		if !hasValue {
			cfg.StrictStore = true
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: -strict: %v", common.ErrConfiguration, err)
		}
		cfg.StrictStore = b
	}

	if pos := flagx.Positional(args, valueFlags); len(pos) > 0 {
		cfg.ClientID = pos[0]
	}
	return nil
}
