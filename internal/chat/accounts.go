package chat

import "sort"

// User is a registered account. Passwords are compared as plain strings.
type User struct {
	Username string
	Password string
	LoggedIn bool
	ClientID string // empty while logged out
}

// Accounts is the session store: registered users plus the index of
// authenticated connections. It is owned by the registry goroutine and is not
// safe for concurrent use.
type Accounts struct {
	limit    int
	users    map[string]*User
	byClient map[string]string // client ID -> username, authenticated connections only
}

// NewAccounts creates a store that accepts at most limit registrations.
func NewAccounts(limit int) *Accounts {
	return &Accounts{
		limit:    limit,
		users:    make(map[string]*User),
		byClient: make(map[string]string),
	}
}

// Register creates a logged-out account. Registration is refused once the
// number of accounts has reached the limit.
func (a *Accounts) Register(username, password string) error {
	if _, exists := a.users[username]; exists {
		return ErrDuplicateUser
	}
	if len(a.users) >= a.limit {
		return ErrAccountLimit
	}
	a.users[username] = &User{Username: username, Password: password}
	return nil
}

// Login binds username to clientID. A second login for an account that is
// already bound elsewhere fails and leaves the existing session untouched.
func (a *Accounts) Login(username, password, clientID string) error {
	u, ok := a.users[username]
	if !ok {
		return ErrUnknownUser
	}
	if u.Password != password {
		return ErrBadCredentials
	}
	if u.LoggedIn {
		if u.ClientID == clientID {
			return nil
		}
		return ErrAlreadyLoggedIn
	}
	// A connection that switches accounts releases the previous one first.
	a.Logout(clientID)

	u.LoggedIn = true
	u.ClientID = clientID
	a.byClient[clientID] = username
	return nil
}

// Logout unbinds clientID and reports the username it was authenticated as.
func (a *Accounts) Logout(clientID string) (string, bool) {
	username, ok := a.byClient[clientID]
	if !ok {
		return "", false
	}
	delete(a.byClient, clientID)
	if u, ok := a.users[username]; ok {
		u.LoggedIn = false
		u.ClientID = ""
	}
	return username, true
}

// UsernameOf reports whether clientID is authenticated and as whom.
func (a *Accounts) UsernameOf(clientID string) (string, bool) {
	username, ok := a.byClient[clientID]
	return username, ok
}

// ClientOf finds the connection an online user is bound to.
func (a *Accounts) ClientOf(username string) (string, bool) {
	for clientID, name := range a.byClient {
		if name == username {
			return clientID, true
		}
	}
	return "", false
}

// Online returns the authenticated usernames, sorted.
func (a *Accounts) Online() []string {
	names := make([]string, 0, len(a.byClient))
	for _, name := range a.byClient {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the account record.
func (a *Accounts) Lookup(username string) (User, bool) {
	u, ok := a.users[username]
	if !ok {
		return User{}, false
	}
	return *u, true
}

func (a *Accounts) Registered() int { return len(a.users) }

func (a *Accounts) Authenticated() int { return len(a.byClient) }
