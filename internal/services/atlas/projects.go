package atlas

import (
	"context"
	"net/http"

	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/types"
	"github.com/teabranch/atlas-provision/internal/validation"
)

const opCreateProject = "Failed to create project"

// ProjectsService creates Atlas projects.
type ProjectsService struct {
	client *atlasclient.Client
	orgs   *OrganizationsService
	logger *logging.Logger
}

// NewProjectsService creates a new ProjectsService.
func NewProjectsService(client *atlasclient.Client, orgs *OrganizationsService, logger *logging.Logger) *ProjectsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProjectsService{client: client, orgs: orgs, logger: logger}
}

// Create validates name, resolves the organization when orgID is empty and
// creates the project. The returned project carries the server assigned ID.
func (s *ProjectsService) Create(ctx context.Context, name, orgID string) (*types.Project, error) {
	if err := validation.ValidateProjectName(name); err != nil {
		s.logger.Error("Invalid project name", "name", name, "error", err.Error())
		return nil, err
	}

	orgID, err := s.orgs.Resolve(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var created *admin.Group
	err = s.client.Do(ctx, opCreateProject, func(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
		group, resp, err := api.ProjectsApi.CreateProject(ctx, &admin.Group{Name: name, OrgId: orgID}).Execute()
		created = group
		return resp, err
	})
	if err != nil {
		s.logger.Error("Failed to create project", "name", name, "org_id", orgID, "error", err.Error())
		return nil, err
	}

	project := &types.Project{ID: created.GetId(), Name: name, OrgID: orgID}
	s.logger.Info("Project created successfully", "name", name, "project_id", project.ID)
	return project, nil
}
