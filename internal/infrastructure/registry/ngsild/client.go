package ngsild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/ports"
	"github.com/ersonp/datacatalog/internal/infrastructure/config"
)

const (
	entitiesPath = "/ngsi-ld/v1/entities/"
	upsertPath   = "/ngsi-ld/v1/entityOperations/upsert"

	tenantHeader    = "NGSILD-Tenant"
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 512
)

// StatusError is an unexpected registry response. It matches
// entities.ErrRegistryUnavailable under errors.Is.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("registry %s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports whether target is entities.ErrRegistryUnavailable.
func (e *StatusError) Is(target error) bool {
	return target == entities.ErrRegistryUnavailable
}

// batchResult is the body of a 207 Multi-Status batch response.
type batchResult struct {
	Success []string `json:"success"`
	Errors  []struct {
		EntityID string `json:"entityId"`
		Error    struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"error"`
	} `json:"errors"`
}

// Client is an HTTP client for an NGSI-LD context broker.
type Client struct {
	baseURL    string
	tenant     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client from registry configuration.
func NewClient(cfg config.RegistryConfig, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("registry url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parsing registry url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		tenant:     cfg.Tenant,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("registry"),
	}, nil
}

// Lookup retrieves an entity and classifies the answer. Only a transport
// failure is an error; any status other than success or 404 is
// ports.PresenceUnknown.
func (c *Client) Lookup(ctx context.Context, entityID string) (ports.Presence, error) {
	path := entitiesPath + url.PathEscape(entityID)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return ports.PresenceUnknown, err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
		return ports.PresenceFound, nil
	case resp.StatusCode == http.StatusNotFound:
		return ports.PresenceAbsent, nil
	default:
		c.logger.Warn("unexpected lookup status",
			zap.String("entity", entityID),
			zap.Int("status", resp.StatusCode))
		return ports.PresenceUnknown, nil
	}
}

// Upsert creates or updates entities in one batch operation. Existing
// attributes named in the batch are overwritten; others are kept.
func (c *Client) Upsert(ctx context.Context, batch []ports.RegistryEntity) error {
	if len(batch) == 0 {
		return nil
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encoding upsert batch: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, upsertPath+"?options=update", body)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusNoContent, http.StatusOK:
		c.logger.Debug("upserted entities", zap.Int("count", len(batch)))
		return nil
	case http.StatusMultiStatus:
		return partialFailure(resp)
	default:
		return statusError(http.MethodPost, upsertPath, resp)
	}
}

// Delete removes an entity. An entity the registry does not know counts as
// deleted.
func (c *Client) Delete(ctx context.Context, entityID string) error {
	path := entitiesPath + url.PathEscape(entityID)
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if success(resp.StatusCode) {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("entity already absent from registry", zap.String("entity", entityID))
		return nil
	}
	return statusError(http.MethodDelete, path, resp)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tenant != "" {
		req.Header.Set(tenantHeader, c.tenant)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", entities.ErrRegistryUnavailable, method, path, err)
	}
	return resp, nil
}

func partialFailure(resp *http.Response) error {
	var result batchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: upsert partially failed", entities.ErrRegistryUnavailable)
	}
	failed := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		reason := e.Error.Title
		if e.Error.Detail != "" {
			reason = e.Error.Detail
		}
		failed = append(failed, e.EntityID+" ("+reason+")")
	}
	return fmt.Errorf("%w: upsert failed for %d entities: %s",
		entities.ErrRegistryUnavailable, len(failed), strings.Join(failed, ", "))
}

func statusError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func success(code int) bool {
	return code >= 200 && code < 300
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
