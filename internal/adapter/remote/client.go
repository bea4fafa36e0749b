package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/infrastructure/database/types"
	"github.com/meanly/wordtrack/internal/usecase"
)

// Client talks to the backend progress API. Transport and server errors are
// wrapped in entity.ErrRemoteTransient so the synchronizer retries them; a
// version conflict surfaces as *entity.ConflictError carrying the server copy.
type Client struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewClient creates a progress API client.
func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{},
	}
}

var _ usecase.RemoteStore = (*Client)(nil)

// UpsertProgress pushes the full record snapshot to the backend.
func (c *Client) UpsertProgress(ctx context.Context, rec *entity.ProgressRecord) error {
	body, err := json.Marshal(types.SnapshotFromRecord(*rec))
	if err != nil {
		return fmt.Errorf("failed to marshal progress record: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/progress/%s", c.baseURL, rec.UserID, rec.ItemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrRemoteTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict:
		var server types.ProgressSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&server); err != nil {
			return fmt.Errorf("failed to decode conflict body: %w", err)
		}
		return &entity.ConflictError{Server: server.Record()}
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: server returned status %d", entity.ErrRemoteTransient, resp.StatusCode)
	default:
		return fmt.Errorf("upsert progress: server returned status %d", resp.StatusCode)
	}
}

// DeleteProgress removes the record from the backend. A 404 means the record
// is already gone, which is the state we wanted.
func (c *Client) DeleteProgress(ctx context.Context, userID, itemID string) error {
	url := fmt.Sprintf("%s/users/%s/progress/%s", c.baseURL, userID, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrRemoteTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: server returned status %d", entity.ErrRemoteTransient, resp.StatusCode)
	default:
		return fmt.Errorf("delete progress: server returned status %d", resp.StatusCode)
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}
