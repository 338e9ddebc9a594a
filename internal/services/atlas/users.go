package atlas

import (
	"context"
	"net/http"

	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/types"
)

const opCreateDatabaseUser = "Failed to create database user"

// DatabaseUsersService creates the default database user of a project.
type DatabaseUsersService struct {
	client *atlasclient.Client
	user   types.DatabaseUser
	logger *logging.Logger
}

// NewDatabaseUsersService creates a new DatabaseUsersService for user.
func NewDatabaseUsersService(client *atlasclient.Client, user types.DatabaseUser, logger *logging.Logger) *DatabaseUsersService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DatabaseUsersService{client: client, user: user, logger: logger}
}

// User returns the account this service creates.
func (s *DatabaseUsersService) User() types.DatabaseUser {
	return s.user
}

// CreateDefault creates the configured user with its role on the auth
// database. A user that already exists counts as success.
func (s *DatabaseUsersService) CreateDefault(ctx context.Context, projectID string) error {
	payload := &admin.CloudDatabaseUser{
		Username:     s.user.Username,
		DatabaseName: s.user.AuthDatabase,
		Password:     admin.PtrString(s.user.Password),
		Roles: &[]admin.DatabaseUserRole{
			{RoleName: s.user.Role, DatabaseName: s.user.AuthDatabase},
		},
	}

	err := s.client.Do(ctx, opCreateDatabaseUser, func(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
		_, resp, err := api.DatabaseUsersApi.CreateDatabaseUser(ctx, projectID, payload).Execute()
		return resp, err
	})
	switch {
	case err == nil:
		s.logger.Info("Database user created", "username", s.user.Username, "project_id", projectID)
		return nil
	case atlasclient.IsUserAlreadyExists(err):
		s.logger.Warn("Database user already exists", "username", s.user.Username, "project_id", projectID)
		return nil
	default:
		s.logger.Error("Failed to create database user", "username", s.user.Username, "error", err.Error())
		return err
	}
}
