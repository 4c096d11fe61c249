package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/model"
)

const crmService = "crm"

// Contact is the personal data forwarded to the RU-hosted CRM function.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// CRMForwarder stores contact data in Russia before anything reaches the
// record store. Every call is capped by the configured timeout.
type CRMForwarder struct {
	cfg    config.CRMConfig
	client *http.Client
	log    *zap.Logger
}

func NewCRMForwarder(cfg config.CRMConfig, client *http.Client, log *zap.Logger) *CRMForwarder {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 7 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CRMForwarder{cfg: cfg, client: client, log: log}
}

// Forward posts the contact and returns the outcome to be stored next to the
// record. It never fails the caller.
func (f *CRMForwarder) Forward(ctx context.Context, c Contact) model.CRMOutcome {
	id, err := f.forward(ctx, c)
	if err != nil {
		f.log.Warn("crm forwarding failed", zap.String("reason", apperr.Reason(err)), zap.Error(err))
		return model.CRMOutcome{Error: apperr.Reason(err)}
	}
	return model.CRMOutcome{OK: true, YDBID: id}
}

func (f *CRMForwarder) forward(ctx context.Context, c Contact) (string, error) {
	if f.cfg.URL == "" {
		return "", apperr.ErrConfigMissing
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	body := struct {
		Contact
		Token string `json:"token,omitempty"`
	}{Contact: c, Token: f.cfg.InternalToken}
	bs, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(bs))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperr.Unreachable(crmService, "forward", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Unreachable(crmService, "forward", err)
	}

	var out struct {
		OK    bool            `json:"ok"`
		YDBID json.RawMessage `json:"ydb_id"`
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || json.Unmarshal(raw, &out) != nil || !out.OK {
		return "", apperr.RequestFailed(crmService, "forward", resp.StatusCode, raw)
	}
	return rawID(out.YDBID), nil
}

// rawID accepts both string and numeric ids.
func rawID(m json.RawMessage) string {
	var s string
	if json.Unmarshal(m, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(m, &n) == nil {
		return n.String()
	}
	return ""
}
