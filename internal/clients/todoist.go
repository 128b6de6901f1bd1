package clients

import (
	"context"
	"fmt"
)

const todoistDefaultBaseURL = "https://api.todoist.com"

// TodoistClient validates task-service API tokens.
type TodoistClient struct {
	BaseURL string
}

type todoistProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *TodoistClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return todoistDefaultBaseURL
}

// ListProjects returns the projects visible to the token.
func (c *TodoistClient) ListProjects(ctx context.Context, token string) ([]string, error) {
	var projects []todoistProject
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := doJSON(ctx, "todoist", "GET", c.baseURL()+"/rest/v2/projects", headers, nil, &projects); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names, nil
}

// ProbeToken accepts the token only if at least one project is visible; every
// Todoist account has an Inbox, so an empty list means a bad token scope.
func (c *TodoistClient) ProbeToken(ctx context.Context, token string) error {
	projects, err := c.ListProjects(ctx, token)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("todoist token lists no projects")
	}
	return nil
}
