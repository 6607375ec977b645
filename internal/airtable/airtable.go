// Package airtable is a thin client for the hosted record store's REST API.
//
// Every piece of persistent state in the app lives in one base of this
// store: Users, OTP, Games, Posts, RSVP, Plays. The client deliberately
// stays schema-agnostic: it moves Records (id + field map) in and out and
// leaves the mapping to domain models to the repository layer, the same
// way a SQL driver stays below the repositories.
//
// The store has no transactions and no conditional writes. Callers that
// need "at most one" semantics (RSVP per event, user per email) have to
// read-then-write and live with the race; see the service layer for the
// mitigations.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultAPIBase is the regular records API.
	DefaultAPIBase = "https://api.airtable.com/v0"
	// DefaultContentBase is the separate host for attachment uploads.
	DefaultContentBase = "https://content.airtable.com/v0"

	// maxPageSize is the largest page the store will return.
	maxPageSize = 100
)

// Client issues authenticated requests against one base of the record
// store. It holds no local state beyond configuration; all methods are
// safe for concurrent use.
type Client struct {
	apiKey      string
	baseID      string
	apiBase     string
	contentBase string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different records endpoint.
// Tests use this with httptest servers.
func WithBaseURL(apiBase string) Option {
	return func(c *Client) { c.apiBase = apiBase }
}

// WithContentURL points the client at a different upload endpoint.
func WithContentURL(contentBase string) Option {
	return func(c *Client) { c.contentBase = contentBase }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given base. The key is the store-wide API
// key; if it is empty every request fails, which the handlers surface as
// a 500 "server configuration error".
func New(apiKey, baseID string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseID:      baseID,
		apiBase:     DefaultAPIBase,
		contentBase: DefaultContentBase,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Record is one row of a table. Fields is the raw field map as the store
// returns it; empty cells are simply absent.
type Record struct {
	ID          string    `json:"id"`
	CreatedTime time.Time `json:"createdTime"`
	Fields      Fields    `json:"fields"`
}

// Fields is a raw field map with typed accessors for the shapes the
// store actually produces.
type Fields map[string]any

// String returns the field as a string, or "" if absent or another type.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Bool returns the field as a bool; absent means false.
func (f Fields) Bool(key string) bool {
	b, _ := f[key].(bool)
	return b
}

// LinkedIDs normalizes a linked-record field. The store returns either an
// array of id strings or an array of {id: ...} objects depending on the
// endpoint, so both shapes are handled.
func (f Fields) LinkedIDs(key string) []string {
	arr, ok := f[key].([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	ids := make([]string, 0, len(arr))
	for _, v := range arr {
		switch t := v.(type) {
		case string:
			ids = append(ids, t)
		case map[string]any:
			if id, ok := t["id"].(string); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// List returns a list-typed field's raw elements, or nil.
func (f Fields) List(key string) []any {
	arr, _ := f[key].([]any)
	return arr
}

// Time parses a timestamp field, falling back to the zero time.
func (f Fields) Time(key string) time.Time {
	s, ok := f[key].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// APIError is a non-2xx response from the store. The body is kept so the
// server logs can show exactly what the store objected to; it must never
// be echoed to API clients.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("record store error %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Sort is one sort clause for a list request.
type Sort struct {
	Field     string
	Direction string // "asc" or "desc"
}

// ListOptions narrows a table listing.
type ListOptions struct {
	// Filter is a formula built with this package's formula helpers.
	Filter string
	// Sort clauses, applied in order.
	Sort []Sort
	// MaxRecords stops pagination once this many records are collected.
	// Zero means no cap.
	MaxRecords int
}

type recordsPage struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// ListAll fetches every matching record, following pagination cursors
// until the store stops returning an offset or MaxRecords is reached.
func (c *Client) ListAll(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		page, err := c.listPage(ctx, table, opts, offset, maxPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if opts.MaxRecords > 0 && len(all) >= opts.MaxRecords {
			return all[:opts.MaxRecords], nil
		}
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// First returns the first matching record, or nil if there is none.
func (c *Client) First(ctx context.Context, table string, opts ListOptions) (*Record, error) {
	page, err := c.listPage(ctx, table, opts, "", 1)
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, nil
	}
	rec := page.Records[0]
	return &rec, nil
}

func (c *Client) listPage(ctx context.Context, table string, opts ListOptions, offset string, pageSize int) (*recordsPage, error) {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(pageSize))
	if opts.Filter != "" {
		params.Set("filterByFormula", opts.Filter)
	}
	for i, s := range opts.Sort {
		params.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		dir := s.Direction
		if dir != "asc" {
			dir = "desc"
		}
		params.Set(fmt.Sprintf("sort[%d][direction]", i), dir)
	}
	if offset != "" {
		params.Set("offset", offset)
	}

	var page recordsPage
	path := url.PathEscape(table) + "?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, c.apiBase, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRecord fetches one record by id. A 404 surfaces as *APIError.
func (c *Client) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	var rec Record
	path := url.PathEscape(table) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, c.apiBase, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateRecord inserts one row and returns it as stored.
func (c *Client) CreateRecord(ctx context.Context, table string, fields Fields) (*Record, error) {
	body := map[string]any{
		"records": []map[string]any{{"fields": fields}},
	}
	var out recordsPage
	if err := c.do(ctx, http.MethodPost, c.apiBase, url.PathEscape(table), body, &out); err != nil {
		return nil, err
	}
	if len(out.Records) == 0 {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Body: "create returned no records"}
	}
	rec := out.Records[0]
	return &rec, nil
}

// UpdateRecord patches the given fields on a record and returns the
// updated row. Fields not named are left untouched.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields Fields) (*Record, error) {
	var rec Record
	path := url.PathEscape(table) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, c.apiBase, path, map[string]any{"fields": fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, table, id string) error {
	path := url.PathEscape(table) + "/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, c.apiBase, path, nil, nil)
}

// fetchChunkSize keeps the OR(RECORD_ID() = ...) formulas short enough to
// fit in a query string.
const fetchChunkSize = 10

// FetchByIDs fetches records by id list, batching ids into OR-filters.
// Order of the result is not guaranteed; missing ids are silently absent.
func (c *Client) FetchByIDs(ctx context.Context, table string, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var all []Record
	for start := 0; start < len(ids); start += fetchChunkSize {
		end := min(start+fetchChunkSize, len(ids))
		chunk, err := c.ListAll(ctx, table, ListOptions{Filter: RecordIDIn(ids[start:end])})
		if err != nil {
			return nil, err
		}
		all = append(all, chunk...)
	}
	return all, nil
}

// MaxUploadBytes caps decoded attachment uploads at 5MB, matching the
// content endpoint's own limit.
const MaxUploadBytes = 5 << 20

// UploadAttachment sends base64-encoded bytes to the content endpoint and
// appends them as an attachment on the given record field. It returns the
// id of the attachment that was just added, which callers use to re-patch
// the field down to exactly that attachment.
func (c *Client) UploadAttachment(ctx context.Context, recordID, field, fileBase64, contentType, filename string) (string, error) {
	body := map[string]any{
		"file":        fileBase64,
		"contentType": contentType,
		"filename":    filename,
	}
	path := url.PathEscape(c.baseID) + "/" + url.PathEscape(recordID) + "/" + url.PathEscape(field) + "/uploadAttachment"

	var out struct {
		ID     string `json:"id"`
		Fields Fields `json:"fields"`
	}
	if err := c.doRaw(ctx, http.MethodPost, c.contentBase+"/"+path, body, &out); err != nil {
		return "", err
	}

	// The response echoes the full field value; the upload is the last
	// element of whichever field array came back.
	for _, v := range out.Fields {
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		if att, ok := arr[len(arr)-1].(map[string]any); ok {
			if id, ok := att["id"].(string); ok {
				return id, nil
			}
		}
	}
	return "", nil
}

func (c *Client) do(ctx context.Context, method, base, path string, body, out any) error {
	return c.doRaw(ctx, method, base+"/"+url.PathEscape(c.baseID)+"/"+path, body, out)
}

func (c *Client) doRaw(ctx context.Context, method, fullURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("record store request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded amount of the body for the logs.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
