package session

import "testing"

type memTokens struct {
	tok    string
	clears int
}

func (m *memTokens) Save(tok string) error { m.tok = tok; return nil }
func (m *memTokens) Clear() error          { m.tok = ""; m.clears++; return nil }

func TestLoginCycle(t *testing.T) {
	store := NewStore(&memTokens{})

	store.LoginStart()
	st := store.Snapshot()
	if !st.Loading || st.IsAuthenticated {
		t.Errorf("expected loading unauthenticated state, got %+v", st)
	}

	store.LoginSuccess(User{Username: "mina", Email: "mina@example.com"}, "tok-1")
	st = store.Snapshot()
	if !st.IsAuthenticated || st.User == nil || st.AccessToken != "tok-1" {
		t.Fatalf("expected authenticated state, got %+v", st)
	}
	if st.Loading || st.Err != "" {
		t.Errorf("expected loading and error cleared, got %+v", st)
	}

	store.LoginFailure("bad credentials")
	st = store.Snapshot()
	if st.IsAuthenticated || st.User != nil || st.AccessToken != "" {
		t.Errorf("expected failure to reset auth, got %+v", st)
	}
	if st.Err != "bad credentials" {
		t.Errorf("expected error message, got %q", st.Err)
	}
}

func TestLogoutClearsPersistedToken(t *testing.T) {
	tokens := &memTokens{tok: "tok-1"}
	store := NewStore(tokens)
	store.LoginSuccess(User{Username: "mina"}, "tok-1")

	store.Logout()

	st := store.Snapshot()
	if st.IsAuthenticated || st.User != nil || st.AccessToken != "" {
		t.Errorf("expected empty state after logout, got %+v", st)
	}
	if tokens.tok != "" || tokens.clears != 1 {
		t.Errorf("expected the persisted token to be cleared once, got %+v", tokens)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore(&memTokens{})
	store.LoginSuccess(User{Username: "mina"}, "tok-1")

	st := store.Snapshot()
	st.User.Username = "mutated"

	if store.Snapshot().User.Username != "mina" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestSubscribe(t *testing.T) {
	store := NewStore(&memTokens{})

	var seen []bool
	unsubscribe := store.Subscribe(func(st State) {
		seen = append(seen, st.IsAuthenticated)
	})

	store.LoginSuccess(User{Username: "mina"}, "tok-1")
	store.Logout()

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("expected [true false] notifications, got %v", seen)
	}

	unsubscribe()
	store.LoginSuccess(User{Username: "mina"}, "tok-2")
	if len(seen) != 2 {
		t.Errorf("expected no notification after unsubscribe, got %d", len(seen))
	}
}

func TestUpdateProfile(t *testing.T) {
	store := NewStore(&memTokens{})

	// No-op while unauthenticated.
	email := "new@example.com"
	store.UpdateProfile(ProfileUpdate{Email: &email})
	if store.Snapshot().User != nil {
		t.Fatal("expected no user before login")
	}

	store.LoginSuccess(User{Username: "mina", Email: "old@example.com", BirthDate: "2000-01-01"}, "tok-1")
	store.UpdateProfile(ProfileUpdate{Email: &email})

	u := store.Snapshot().User
	if u.Email != "new@example.com" {
		t.Errorf("expected email updated, got %q", u.Email)
	}
	if u.BirthDate != "2000-01-01" {
		t.Errorf("expected untouched birth date, got %q", u.BirthDate)
	}
}
