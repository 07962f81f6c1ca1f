package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securedrop/internal/config"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"github.com/dmitrijs2005/securedrop/internal/models"
	"github.com/dmitrijs2005/securedrop/internal/repositories/records"
	"github.com/dmitrijs2005/securedrop/internal/services"
)

// App is one interactive SecureDrop session for a single client id.
type App struct {
	config   *config.Config
	users    services.UserDirectory
	sessions services.SessionManager
	vault    services.ContactVault
	log      logging.Logger

	key   cryptox.Key
	repos *records.Repositories

	email string
	token string

	reader *bufio.Reader
	out    io.Writer
}

// NewApp loads the encryption key, opens the client's stores and wires the
// services. A missing or unreadable key file is fatal: there is no
// unencrypted fallback.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, error) {
	log = log.With("client", c.ClientID)

	keyPath := c.ResolvedKeyPath()
	key, err := cryptox.LoadOrCreateKey(keyPath)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	log.Debug(ctx, "encryption key ready", "path", keyPath)

	hasher, err := cryptox.NewHasher(c.HashAlgorithm, c.BcryptCost)
	if err != nil {
		key.Wipe()
		return nil, err
	}

	repos, err := records.InitRepositories(ctx, c, log)
	if err != nil {
		key.Wipe()
		return nil, fmt.Errorf("record store: %w", err)
	}

	sessions := services.NewSessionManager(c.SessionTTL)

	a := newApp(
		c,
		services.NewUserDirectory(repos.Users, hasher, c.MaxLoginAttempts, log.With("service", "users")),
		sessions,
		services.NewContactVault(repos.Contacts, key, sessions, log.With("service", "contacts")),
		in, out, log,
	)
	a.key = key
	a.repos = repos
	return a, nil
}

func newApp(c *config.Config, users services.UserDirectory, sessions services.SessionManager,
	vault services.ContactVault, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		config:   c,
		users:    users,
		sessions: sessions,
		vault:    vault,
		log:      log,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn() bool {
	return a.token != "" && a.sessions.State(a.token) == models.Active
}

// Run drives the whole interactive session: optional registration, login,
// then the command loop until exit or end of input.
func (a *App) Run(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Do you want to register a new user (y/n)? ", a.out)
	if err != nil {
		return err
	}

	if isYes(answer) {
		if err := a.Register(ctx); err != nil {
			return err
		}
	}

	if err := a.Login(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.reader, a.out)
	return nil
}

// Close ends any active session, wipes the key and releases the stores.
func (a *App) Close() error {
	a.Logout()
	if a.key != nil {
		a.key.Wipe()
	}
	if a.repos != nil {
		return a.repos.Close()
	}
	return nil
}

func isYes(s string) bool {
	switch s {
	case "y", "Y", "yes", "Yes", "YES":
		return true
	}
	return false
}
