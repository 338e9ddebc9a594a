// Package types holds the provisioning domain model shared by services and commands.
package types

// Credentials is the Atlas programmatic API key pair.
type Credentials struct {
	PublicKey  string
	PrivateKey string
}

// Present reports whether both halves of the key pair are set.
func (c Credentials) Present() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

// Organization is an Atlas organization visible to the API key.
type Organization struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Project is an Atlas project (a "group" in the Admin API).
type Project struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	OrgID string `json:"orgId" yaml:"orgId"`
}

// DatabaseUser is the account created on every new cluster.
type DatabaseUser struct {
	Username     string `json:"username" yaml:"username"`
	Password     string `json:"-" yaml:"-"`
	Role         string `json:"role" yaml:"role"`
	AuthDatabase string `json:"authDatabase" yaml:"authDatabase"`
}

const (
	DefaultDatabaseUsername = "admin"
	DefaultDatabasePassword = "Password1"
	DefaultDatabaseRole     = "atlasAdmin"
	DefaultAuthDatabase     = "admin"
)

// DefaultDatabaseUser returns the admin account provisioned alongside clusters.
func DefaultDatabaseUser() DatabaseUser {
	return DatabaseUser{
		Username:     DefaultDatabaseUsername,
		Password:     DefaultDatabasePassword,
		Role:         DefaultDatabaseRole,
		AuthDatabase: DefaultAuthDatabase,
	}
}

// WithOverrides replaces the username and password when non-empty.
func (u DatabaseUser) WithOverrides(username, password string) DatabaseUser {
	if username != "" {
		u.Username = username
	}
	if password != "" {
		u.Password = password
	}
	return u
}
