// Package repository talks to the external tabular record store that owns
// purchases, leads and schedule exceptions, and to the holiday calendar
// API. Nothing is persisted locally; short-lived copies of read-mostly data
// may be kept in Redis.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
)

const recordStoreService = "airtable"

// Fields is the column-name to value map of one record.
type Fields map[string]any

// Record is a single row of a record store table.
type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}

// Text returns a field rendered as trimmed text ("" when absent).
func (r *Record) Text(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		if len(t) > 0 {
			return strings.TrimSpace(fmt.Sprint(t[0]))
		}
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Number returns a numeric field, parsing text when necessary; 0 otherwise.
func (r *Record) Number(name string) float64 {
	switch t := r.Fields[name].(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

// RecordStore is a minimal client for the record store REST API. Requests
// carry a bearer token and are never retried.
type RecordStore struct {
	cfg    config.AirtableConfig
	client *http.Client
}

// NewRecordStore returns a client. A nil client means http.DefaultClient.
func NewRecordStore(cfg config.AirtableConfig, client *http.Client) *RecordStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &RecordStore{cfg: cfg, client: client}
}

func (s *RecordStore) tableURL(table string) (string, error) {
	if s == nil || s.cfg.APIKey == "" || s.cfg.BaseID == "" || table == "" {
		return "", apperr.ErrConfigMissing
	}
	base := strings.TrimRight(s.cfg.APIURL, "/")
	return base + "/" + url.PathEscape(s.cfg.BaseID) + "/" + url.PathEscape(table), nil
}

// FindOneByKey returns the first record whose field equals key ignoring
// case, or nil when nothing matches.
func (s *RecordStore) FindOneByKey(ctx context.Context, table, field, key string) (*Record, error) {
	u, err := s.tableURL(table)
	if err != nil {
		return nil, err
	}
	formula := fmt.Sprintf(`(LOWER({%s}&"") = "%s")`, field, escapeFormula(strings.ToLower(key)))
	q := url.Values{}
	q.Set("pageSize", "1")
	q.Set("maxRecords", "1")
	q.Set("filterByFormula", formula)

	var out struct {
		Records []Record `json:"records"`
	}
	if err := s.do(ctx, "find", http.MethodGet, u+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Records) == 0 {
		return nil, nil
	}
	return &out.Records[0], nil
}

// Create inserts one record and returns it with its store-assigned id.
func (s *RecordStore) Create(ctx context.Context, table string, fields Fields) (*Record, error) {
	u, err := s.tableURL(table)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := s.do(ctx, "create", http.MethodPost, u, Fields{"fields": fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update patches the given fields of one record.
func (s *RecordStore) Update(ctx context.Context, table, id string, fields Fields) error {
	u, err := s.tableURL(table)
	if err != nil {
		return err
	}
	return s.do(ctx, "update", http.MethodPatch, u+"/"+url.PathEscape(id), Fields{"fields": fields}, nil)
}

// List returns every record of a table, following pagination offsets.
func (s *RecordStore) List(ctx context.Context, table string) ([]Record, error) {
	u, err := s.tableURL(table)
	if err != nil {
		return nil, err
	}
	var all []Record
	offset := ""
	for {
		q := url.Values{}
		q.Set("pageSize", "100")
		if offset != "" {
			q.Set("offset", offset)
		}
		var page struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}
		if err := s.do(ctx, "list", http.MethodGet, u+"?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

func (s *RecordStore) do(ctx context.Context, op, method, u string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal: %w", recordStoreService, op, err)
		}
		rd = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", recordStoreService, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.Unreachable(recordStoreService, op, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Unreachable(recordStoreService, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.RequestFailed(recordStoreService, op, resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.RequestFailed(recordStoreService, op, resp.StatusCode, raw)
	}
	return nil
}

func escapeFormula(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
