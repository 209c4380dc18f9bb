package preflight

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"factflow/internal/config"
)

// CheckAPIServer probes the configured API server's status endpoint. A server
// that is not running is reported as a pass with a "not running" detail; the
// CLI works against the database directly in that case.
func CheckAPIServer(ctx context.Context, cfg *config.Config) Result {
	const name = "API server"

	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return Result{Name: name, Detail: "missing bind address"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := bind
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, strings.TrimRight(url, "/")+"/api/status", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%v)", err)}
	}
	if token := strings.TrimSpace(cfg.Paths.APIToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("not running at %s", bind)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("running at %s", bind)}
	case http.StatusUnauthorized:
		return Result{Name: name, Detail: "auth failed (check api_token)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%d)", resp.StatusCode)}
	}
}
