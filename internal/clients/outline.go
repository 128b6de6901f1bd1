package clients

import (
	"context"
	"fmt"
)

// OutlineClient validates document-service API keys.
type OutlineClient struct {
	BaseURL string // e.g. https://docs.example.com
}

type outlineAuthInfo struct {
	Data struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"data"`
}

// AuthInfo returns the name of the user the key belongs to.
func (c *OutlineClient) AuthInfo(ctx context.Context, apiKey string) (string, error) {
	var resp outlineAuthInfo
	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	if err := doJSON(ctx, "outline", "POST", c.BaseURL+"/api/auth.info", headers, map[string]string{}, &resp); err != nil {
		return "", err
	}
	if resp.Data.User.Name == "" {
		return "", fmt.Errorf("outline auth.info returned no user")
	}
	return resp.Data.User.Name, nil
}

// ProbeKey accepts the key only if the service reports a current user.
func (c *OutlineClient) ProbeKey(ctx context.Context, apiKey string) error {
	_, err := c.AuthInfo(ctx, apiKey)
	return err
}
