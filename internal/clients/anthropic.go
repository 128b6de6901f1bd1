package clients

import (
	"context"
	"fmt"
)

const anthropicDefaultBaseURL = "https://api.anthropic.com"

// AnthropicClient validates model-provider API keys.
type AnthropicClient struct {
	BaseURL string
}

type anthropicModel struct {
	ID string `json:"id"`
}

type anthropicModelList struct {
	Data []anthropicModel `json:"data"`
}

func (c *AnthropicClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return anthropicDefaultBaseURL
}

// ListModels returns the model IDs visible to the key.
func (c *AnthropicClient) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	var list anthropicModelList
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := doJSON(ctx, "anthropic", "GET", c.baseURL()+"/v1/models", headers, nil, &list); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// ProbeKey accepts the key only if the account can list at least one model.
func (c *AnthropicClient) ProbeKey(ctx context.Context, apiKey string) error {
	models, err := c.ListModels(ctx, apiKey)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("anthropic key lists no models")
	}
	return nil
}
