// Package api talks to the hosted todo REST API. Each method performs
// exactly one HTTP round trip and never retries.
package api

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
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/idilsaglam/tada/internal/model"
)

// DefaultBaseURL is the hosted API.
const DefaultBaseURL = "https://assignment-todolist-api.vercel.app"

const tracerName = "github.com/idilsaglam/tada/internal/api"

// Client is bound to one tenant for its whole life.
type Client struct {
	base      string // <baseURL>/api/<tenant>
	tenant    string
	http      *http.Client
	logger    *log.Logger
	userAgent string
	tracer    trace.Tracer
	schemas   schemas
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for tenantID at baseURL.
func New(baseURL, tenantID string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("empty tenant id")
	}
	sc, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:      baseURL + "/api/" + url.PathEscape(tenantID),
		tenant:    tenantID,
		http:      http.DefaultClient,
		logger:    log.New(io.Discard),
		userAgent: "tada",
		tracer:    otel.Tracer(tracerName),
		schemas:   sc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tenant returns the tenant the client is bound to.
func (c *Client) Tenant() string { return c.tenant }

// Create adds an item named name. The server assigns the id.
func (c *Client) Create(ctx context.Context, name string) (model.Item, error) {
	var it model.Item
	body, err := json.Marshal(struct {
		Name string `json:"name"`
	}{name})
	if err != nil {
		return it, &Error{Op: OpCreate, Err: err}
	}
	err = c.do(ctx, OpCreate, http.MethodPost, "/items", bytes.NewReader(body), "application/json", c.schemas.item, &it)
	return it, err
}

// List returns every item of the tenant in server order.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, OpList, http.MethodGet, "/items", nil, "", c.schemas.items, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Get returns one item.
func (c *Client) Get(ctx context.Context, id int) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, OpGet, http.MethodGet, itemPath(id), nil, "", c.schemas.item, &it)
	return it, err
}

// Update sends only the fields set in patch.
func (c *Client) Update(ctx context.Context, id int, patch model.ItemPatch) (model.Item, error) {
	var it model.Item
	body, err := json.Marshal(patch)
	if err != nil {
		return it, &Error{Op: OpUpdate, Err: err}
	}
	err = c.do(ctx, OpUpdate, http.MethodPatch, itemPath(id), bytes.NewReader(body), "application/json", c.schemas.item, &it)
	return it, err
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, OpDelete, http.MethodDelete, itemPath(id), nil, "", nil, nil)
}

func itemPath(id int) string { return "/items/" + strconv.Itoa(id) }

func (c *Client) do(ctx context.Context, op Op, method, path string, body io.Reader, contentType string, schema *jsonschema.Schema, out any) (err error) {
	reqID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "api."+string(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("tada.tenant", c.tenant),
			attribute.String("tada.request_id", reqID),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "method", method, "path", path, "request_id", reqID, "err", err)
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var detail error
		if s := strings.TrimSpace(string(snippet)); s != "" {
			detail = fmt.Errorf("%s", s)
		}
		return &Error{Op: op, Status: resp.StatusCode, Err: detail}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := validateBody(schema, data); err != nil {
		return &Error{Op: op, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Err: fmt.Errorf("json unmarshal: %w", err)}
	}
	return nil
}
