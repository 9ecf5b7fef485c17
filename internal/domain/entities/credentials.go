package entities

// Credentials is the identity/token pair forwarded by the app proxy on every
// request. The token is used verbatim as the Postgres password so that all
// database work runs with the caller's own permissions.
type Credentials struct {
	Email string
	Token string
}

// Valid reports whether the pair can authorize a request. The email may be
// empty in some proxy setups; the token never may.
func (c Credentials) Valid() bool {
	return c.Token != ""
}
