package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
)

const supportService = "support_bot"

// ChatTurn is one message of the support chat history.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// SupportBot proxies the site's support chat to an automation webhook.
type SupportBot struct {
	cfg    config.SupportBotConfig
	client *http.Client
}

func NewSupportBot(cfg config.SupportBotConfig, client *http.Client) *SupportBot {
	if client == nil {
		client = http.DefaultClient
	}
	return &SupportBot{cfg: cfg, client: client}
}

// Ask forwards the message with its history and returns the bot's reply.
// An empty reply means the bot answered without any known reply field.
func (s *SupportBot) Ask(ctx context.Context, message string, history []ChatTurn) (string, error) {
	if s.cfg.WebhookURL == "" {
		return "", fmt.Errorf("support bot: %w", apperr.ErrConfigMissing)
	}
	if history == nil {
		history = []ChatTurn{}
	}
	bs, err := json.Marshal(map[string]any{"message": message, "history": history})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(bs))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.Unreachable(supportService, "ask", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Unreachable(supportService, "ask", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.RequestFailed(supportService, "ask", resp.StatusCode, raw)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", apperr.RequestFailed(supportService, "ask", resp.StatusCode, raw)
	}
	for _, k := range []string{"reply", "answer", "text", "output"} {
		if v, ok := data[k].(string); ok && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", nil
}
