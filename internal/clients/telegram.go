package clients

import (
	"context"
	"fmt"
)

const telegramDefaultBaseURL = "https://api.telegram.org"

// TelegramClient validates bot tokens against the Bot API.
type TelegramClient struct {
	BaseURL string
}

type telegramUser struct {
	Username string `json:"username"`
}

type telegramGetMe struct {
	OK     bool         `json:"ok"`
	Result telegramUser `json:"result"`
}

func (c *TelegramClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return telegramDefaultBaseURL
}

// GetMe returns the bot's username for the token.
func (c *TelegramClient) GetMe(ctx context.Context, token string) (string, error) {
	var resp telegramGetMe
	url := fmt.Sprintf("%s/bot%s/getMe", c.baseURL(), token)
	if err := doJSON(ctx, "telegram", "GET", url, nil, nil, &resp); err != nil {
		return "", err
	}
	if !resp.OK || resp.Result.Username == "" {
		return "", fmt.Errorf("telegram getMe returned no bot identity")
	}
	return resp.Result.Username, nil
}

// ProbeToken accepts the token only if the bot reports a username.
func (c *TelegramClient) ProbeToken(ctx context.Context, token string) error {
	_, err := c.GetMe(ctx, token)
	return err
}
