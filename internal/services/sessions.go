package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/models"
)

// SessionManager issues and ends opaque session tokens. Sessions live only in
// process memory: NoSession -> Active -> Ended.
type SessionManager interface {
	// Start issues a new token for owner.
	Start(owner string) (string, error)
	// End moves the session to Ended. Unknown or ended tokens are ignored.
	End(token string)
	// Authorize returns ErrUnauthorized unless token is Active and owned by owner.
	Authorize(token, owner string) error
	// State reports where token is in its lifecycle.
	State(token string) models.SessionState
}

type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager builds a SessionManager. A zero ttl means sessions last
// until End or process exit.
func NewSessionManager(ttl time.Duration) SessionManager {
	return &sessionManager{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// newToken hashes owner, issue time and 16 random bytes into 64 hex chars.
func newToken(owner string, issued time.Time) (string, error) {
	random, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(owner + strconv.FormatInt(issued.UnixNano(), 10) + random))
	return hex.EncodeToString(sum[:]), nil
}

func (m *sessionManager) Start(owner string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	issued := m.now()
	for {
		token, err := newToken(owner, issued)
		if err != nil {
			return "", err
		}
		if _, taken := m.sessions[token]; taken {
			continue
		}
		m.sessions[token] = &models.Session{
			Token:      token,
			OwnerEmail: owner,
			IssuedAt:   issued,
			State:      models.Active,
		}
		return token, nil
	}
}

func (m *sessionManager) End(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[token]; ok {
		s.State = models.Ended
	}
}

func (m *sessionManager) Authorize(token, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok || s.State != models.Active {
		return common.ErrUnauthorized
	}
	if m.ttl > 0 && m.now().Sub(s.IssuedAt) >= m.ttl {
		s.State = models.Ended
		return common.ErrUnauthorized
	}
	if s.OwnerEmail != owner {
		return common.ErrUnauthorized
	}
	return nil
}

func (m *sessionManager) State(token string) models.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return models.NoSession
	}
	return s.State
}
