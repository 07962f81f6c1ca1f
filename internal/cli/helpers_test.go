package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/securedrop/internal/config"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"github.com/dmitrijs2005/securedrop/internal/models"
	"github.com/dmitrijs2005/securedrop/internal/repositories/records"
	"github.com/dmitrijs2005/securedrop/internal/services"
	"golang.org/x/crypto/bcrypt"
)

// stubTerminal makes GetPassword read piped lines instead of the terminal.
func stubTerminal(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

// recordingSessions remembers the tokens it ended.
type recordingSessions struct {
	services.SessionManager
	ended []string
}

func (r *recordingSessions) End(token string) {
	r.ended = append(r.ended, token)
	r.SessionManager.End(token)
}

type testEnv struct {
	app      *App
	out      *bytes.Buffer
	sessions *recordingSessions
	contacts *records.JSONRepository[models.ContactRecord]
	key      cryptox.Key
}

// newTestApp wires an App over JSON stores in a temp dir. Every line of
// input is one answer to a prompt.
func newTestApp(t *testing.T, input ...string) *testEnv {
	t.Helper()
	stubTerminal(t)

	dir := t.TempDir()
	log := logging.Discard()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ClientID = "test"
	cfg.DataDir = dir

	users := records.NewJSONRepository[models.UserRecord](filepath.Join(dir, "test_users.json"), true, log)
	contacts := records.NewJSONRepository[models.ContactRecord](filepath.Join(dir, "test_contacts.json"), true, log)

	key := cryptox.GenerateKey()
	sessions := &recordingSessions{SessionManager: services.NewSessionManager(0)}
	out := &bytes.Buffer{}

	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	app := newApp(cfg,
		services.NewUserDirectory(users, cryptox.BcryptHasher{Cost: bcrypt.MinCost}, 3, log),
		sessions,
		services.NewContactVault(contacts, key, sessions, log),
		in, out, log,
	)

	return &testEnv{app: app, out: out, sessions: sessions, contacts: contacts, key: key}
}

// register stores alice directly through the directory.
func (e *testEnv) register(t *testing.T, email, password string) {
	t.Helper()
	err := e.app.users.Register(context.Background(), models.Registration{
		Email:    email,
		FullName: "Alice",
		Password: []byte(password),
		Confirm:  []byte(password),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
}
