package models

// User is a registered account. Passwords are kept as entered.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Session is a snapshot of the authenticated user taken at login time.
type Session struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// SessionOf derives the snapshot stored for u.
func SessionOf(u User) Session {
	return Session{Username: u.Username, IsAdmin: u.IsAdmin}
}
