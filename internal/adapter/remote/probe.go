package remote

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/meanly/wordtrack/internal/usecase"
)

// HealthProbe checks the backend health endpoint before a sync run starts.
// Any response at all counts as online; only transport failure is offline.
type HealthProbe struct {
	url    string
	client *http.Client
}

// NewHealthProbe creates a probe against baseURL+healthPath with a short
// per-check timeout.
func NewHealthProbe(baseURL, healthPath string, timeout time.Duration) *HealthProbe {
	return &HealthProbe{
		url:    strings.TrimRight(baseURL, "/") + healthPath,
		client: &http.Client{Timeout: timeout},
	}
}

var _ usecase.ConnectivityProbe = (*HealthProbe)(nil)

func (p *HealthProbe) IsOnline(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
