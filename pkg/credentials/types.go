package credentials

// Credentials represents the stored bearer tokens in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Backends map[string]BackendCredential `toml:"backends"`
}

// BackendCredential holds the bearer token for a single backend.
type BackendCredential struct {
	Token string `toml:"token"`
}
