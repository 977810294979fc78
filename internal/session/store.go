// Package session holds the authenticated-user state for the client.
// Components read snapshots and dispatch mutations; they never keep their
// own copies of the state.
package session

import "sync"

// User is the profile returned by the auth endpoints.
type User struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Age       *int   `json:"age,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// State is the full authentication state.
// Invariant: IsAuthenticated is true iff User and AccessToken are both set.
type State struct {
	IsAuthenticated bool
	User            *User
	AccessToken     string
	Loading         bool
	Err             string
}

// TokenStore is the persistent mirror of the access token. Logout and
// ClearAuth remove the persisted token so no stale credential survives.
type TokenStore interface {
	Save(tok string) error
	Clear() error
}

// ProfileUpdate carries a partial profile change. Nil fields are untouched.
type ProfileUpdate struct {
	Email     *string
	BirthDate *string
	Age       *int
}

// Store is the process-wide session container.
type Store struct {
	mu        sync.Mutex
	state     State
	tokens    TokenStore
	listeners []func(State)
}

// NewStore creates an empty session store. tokens may be nil (tests).
func NewStore(tokens TokenStore) *Store {
	return &Store{tokens: tokens}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Subscribe registers a listener invoked after every mutation with a state
// snapshot. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners[idx] = nil
	}
}

func (s *Store) notifyLocked() {
	st := s.snapshotLocked()
	for _, fn := range s.listeners {
		if fn != nil {
			fn(st)
		}
	}
}

// LoginStart marks a login attempt in flight.
func (s *Store) LoginStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = true
	s.state.Err = ""
	s.notifyLocked()
}

// LoginSuccess records a completed login.
func (s *Store) LoginSuccess(user User, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		IsAuthenticated: true,
		User:            &user,
		AccessToken:     accessToken,
	}
	s.notifyLocked()
}

// LoginFailure records a failed login with a user-facing message.
func (s *Store) LoginFailure(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Err: message}
	s.notifyLocked()
}

// Logout clears the session and removes the persisted token.
func (s *Store) Logout() {
	s.clearAuth()
}

// SetAuth installs an authenticated user without the loading cycle.
// Used for silent rehydration on startup and after the OAuth callback.
func (s *Store) SetAuth(user User, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsAuthenticated = true
	s.state.User = &user
	s.state.AccessToken = accessToken
	s.notifyLocked()
}

// ClearAuth resets the session and removes the persisted token.
func (s *Store) ClearAuth() {
	s.clearAuth()
}

func (s *Store) clearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	if s.tokens != nil {
		_ = s.tokens.Clear()
	}
	s.notifyLocked()
}

// UpdateProfile applies a partial profile change to the current user.
// No-op when unauthenticated.
func (s *Store) UpdateProfile(patch ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return
	}
	if patch.Email != nil {
		s.state.User.Email = *patch.Email
	}
	if patch.BirthDate != nil {
		s.state.User.BirthDate = *patch.BirthDate
	}
	if patch.Age != nil {
		age := *patch.Age
		s.state.User.Age = &age
	}
	s.notifyLocked()
}
