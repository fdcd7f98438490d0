package models

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Registration creates a new backend user.
type Registration struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Session is the client view of the authentication state.
type Session struct {
	Token string
}

// Authenticated is derived from the presence of a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
