// Package session holds the client-side session: the auth token, the cached
// user role, and UI preferences. It is the explicit, injectable replacement
// for the ambient browser-storage lookups of a web client — populated at
// login, cleared at logout or on a 401 from the Gateway, and handed to the
// components that need it.
//
// Only the token and preferences are persisted, in a small state file. No
// domain data is ever stored locally.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Known user roles as reported by the Gateway. The Gateway enforces
// permissions; the client only uses the role to hide screens.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

// Theme and language defaults matching a fresh install.
const (
	DefaultTheme    = "light"
	DefaultLanguage = "fr"
)

// State is the persisted shape of the session file.
type State struct {
	Token    string `json:"token,omitempty"`
	Refresh  string `json:"refresh,omitempty"`
	Role     string `json:"role,omitempty"`
	Theme    string `json:"theme,omitempty"`
	Language string `json:"language,omitempty"`
}

// Store is a concurrency-safe session holder backed by a state file.
type Store struct {
	lg   *zap.Logger
	path string

	mu        sync.Mutex
	state     State
	onCleared []func()
}

// Open loads the session from path, tolerating a missing file (fresh
// install). A corrupt file is discarded rather than blocking startup.
func Open(lg *zap.Logger, path string) (*Store, error) {
	s := &Store{
		lg:   lg,
		path: path,
		state: State{
			Theme:    DefaultTheme,
			Language: DefaultLanguage,
		},
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Wrap(err, "read session file")
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		lg.Warn("Discarding corrupt session file", zap.String("path", path), zap.Error(err))
		return s, nil
	}
	if st.Theme == "" {
		st.Theme = DefaultTheme
	}
	if st.Language == "" {
		st.Language = DefaultLanguage
	}
	s.state = st
	return s, nil
}

// OnCleared registers a hook invoked whenever the auth state is cleared
// (logout or 401). Hooks run on the goroutine that triggered the clear.
func (s *Store) OnCleared(fn func()) {
	s.mu.Lock()
	s.onCleared = append(s.onCleared, fn)
	s.mu.Unlock()
}

// SetAuth stores the token pair and role after a successful login or a token
// refresh. An empty refresh keeps the one already stored.
func (s *Store) SetAuth(token, refresh, role string) error {
	s.mu.Lock()
	s.state.Token = token
	if refresh != "" {
		s.state.Refresh = refresh
	}
	if role == "" {
		role = RoleCashier
	}
	s.state.Role = role
	err := s.persistLocked()
	s.mu.Unlock()
	return err
}

// Clear removes the token and role, keeps UI preferences, and fires the
// cleared hooks. Clearing an already-clear store does nothing.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.state.Token == "" && s.state.Refresh == "" && s.state.Role == "" {
		s.mu.Unlock()
		return
	}
	s.state.Token = ""
	s.state.Refresh = ""
	s.state.Role = ""
	if err := s.persistLocked(); err != nil {
		s.lg.Warn("Persist session after clear failed", zap.Error(err))
	}
	hooks := append([]func(){}, s.onCleared...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Token returns the stored access token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// RefreshToken returns the stored refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Refresh
}

// Role returns the cached role, defaulting to cashier when authenticated
// without a role.
func (s *Store) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Role == "" {
		return RoleCashier
	}
	return s.state.Role
}

// Authenticated reports whether a token is present. Expiry is ultimately the
// Gateway's call; see TokenExpiresAt for the local hint.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// TokenExpiresAt reads the expiry claim from the stored JWT without
// verifying the signature — the Gateway is the authority, the client only
// uses this to warn before a session dies mid-shift. Returns zero time when
// no token is stored or the claim is absent.
func (s *Store) TokenExpiresAt() time.Time {
	token := s.Token()
	if token == "" {
		return time.Time{}
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		s.lg.Debug("Token claims unreadable", zap.Error(err))
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Theme returns the stored UI theme.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Theme
}

// SetTheme stores the UI theme preference.
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
	return s.persistLocked()
}

// Language returns the stored language preference.
func (s *Store) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Language
}

// SetLanguage stores the language preference.
func (s *Store) SetLanguage(lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Language = lang
	return s.persistLocked()
}

// persistLocked writes the state file atomically. Callers hold s.mu.
func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode session state")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "write session file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace session file")
	}
	return nil
}
