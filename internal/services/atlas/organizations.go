package atlas

import (
	"context"
	"errors"
	"net/http"

	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/types"
)

const opFetchOrganizations = "Failed to fetch organizations"

// ErrNoOrganizationAvailable is returned when the API key sees no organizations.
var ErrNoOrganizationAvailable = errors.New("no organizations found for this user")

// OrganizationsService provides helpers around Atlas Organizations API.
type OrganizationsService struct {
	client *atlasclient.Client
	logger *logging.Logger
}

// NewOrganizationsService creates a new OrganizationsService.
func NewOrganizationsService(client *atlasclient.Client, logger *logging.Logger) *OrganizationsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &OrganizationsService{client: client, logger: logger}
}

// List returns organizations visible to the API key in server order.
func (s *OrganizationsService) List(ctx context.Context) ([]types.Organization, error) {
	var out []types.Organization
	err := s.client.Do(ctx, opFetchOrganizations, func(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
		page, resp, err := api.OrganizationsApi.ListOrganizations(ctx).Execute()
		for _, org := range page.GetResults() {
			out = append(out, types.Organization{ID: org.GetId(), Name: org.GetName()})
		}
		return resp, err
	})
	if err != nil {
		s.logger.Error("Failed to fetch organizations", "error", err.Error())
		return nil, err
	}

	s.logger.Info("Fetched organizations", "count", len(out))
	return out, nil
}

// Resolve returns explicitID unchanged when set. Otherwise it lists the
// organizations once and picks the first.
func (s *OrganizationsService) Resolve(ctx context.Context, explicitID string) (string, error) {
	if explicitID != "" {
		return explicitID, nil
	}

	orgs, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	if len(orgs) == 0 {
		s.logger.Error("No organizations found for this user")
		return "", ErrNoOrganizationAvailable
	}

	s.logger.Info("Using organization", "org_id", orgs[0].ID, "org_name", orgs[0].Name)
	return orgs[0].ID, nil
}
