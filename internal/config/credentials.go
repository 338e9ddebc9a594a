package config

import (
	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/metrics"
	"github.com/teabranch/atlas-provision/internal/types"
)

// Credentials returns the Atlas key pair resolved by Load. Either half may
// be empty; the API client reports that before sending any request.
func (c *Config) Credentials() types.Credentials {
	return types.Credentials{PublicKey: c.PublicKey, PrivateKey: c.PrivateKey}
}

// DatabaseUser returns the account created on new clusters.
func (c *Config) DatabaseUser() types.DatabaseUser {
	return types.DefaultDatabaseUser().WithOverrides(c.DBUser, c.DBPassword)
}

// CreateAtlasClient builds an API client from the resolved configuration.
func (c *Config) CreateAtlasClient(logger *logging.Logger, rec *metrics.Recorder) (*atlasclient.Client, error) {
	return atlasclient.NewClient(atlasclient.Config{
		Credentials:    c.Credentials(),
		BaseURL:        c.BaseURL,
		RequestTimeout: c.Timeout,
		Logger:         logger,
		Metrics:        rec,
	})
}
