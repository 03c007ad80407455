// Package customer adapts the external customer management service to the
// CustomerVerifier port. Customer identity lives entirely on the other side
// of this boundary.
package customer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	portssvc "github.com/financiera/banking-backend/internal/core/ports/services"
)

type httpVerifier struct {
	baseURL string
	client  *http.Client
}

// NewHTTPVerifier creates a CustomerVerifier that probes the customer
// service over HTTP.
func NewHTTPVerifier(baseURL string, timeout time.Duration) portssvc.CustomerVerifier {
	return &httpVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ensure httpVerifier implements the portssvc.CustomerVerifier interface
var _ portssvc.CustomerVerifier = (*httpVerifier)(nil)

// CustomerExists reports whether the customer service knows the given owner ID.
func (v *httpVerifier) CustomerExists(ctx context.Context, ownerID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/customers/%s", v.baseURL, url.PathEscape(ownerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build customer lookup request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("customer service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("customer service returned unexpected status %d", resp.StatusCode)
	}
}
