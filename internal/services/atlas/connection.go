package atlas

import (
	"net/url"
	"strings"

	"github.com/teabranch/atlas-provision/internal/types"
)

// BuildConnectionString returns the SRV connection string of clusterName for
// the default database user.
func BuildConnectionString(clusterName string) string {
	return buildConnectionString(types.DefaultDatabaseUser(), clusterName)
}

func buildConnectionString(user types.DatabaseUser, clusterName string) string {
	u := url.URL{
		Scheme: "mongodb+srv",
		User:   url.UserPassword(user.Username, user.Password),
		Host:   clusterName + ".mongodb.net",
	}
	return u.String()
}

// withCredentials injects user into an official SRV string returned by Atlas.
// It reports false when srv is empty or not a MongoDB URI.
func withCredentials(srv string, user types.DatabaseUser) (string, bool) {
	if srv == "" {
		return "", false
	}
	u, err := url.Parse(srv)
	if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "mongodb") {
		return "", false
	}
	u.User = url.UserPassword(user.Username, user.Password)
	return u.String(), true
}
