// Package clients holds one small typed client per external integration.
// These exist only to validate credentials with a bounded-time call; the
// gateway itself owns the real integrations at runtime.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clawops/clawup/internal/models"
)

// probeTimeout bounds every validation call; anything slower counts as a
// probe failure.
const probeTimeout = 10 * time.Second

func doJSON(ctx context.Context, service, method, url string, headers map[string]string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return &models.ProbeError{Service: service, Endpoint: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &models.ProbeError{
			Service:    service,
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%s\n%s", resp.Status, string(snippet)),
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &models.ProbeError{Service: service, Endpoint: url, Cause: err}
		}
	}
	return nil
}
