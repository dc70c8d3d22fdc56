package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"leadhunt-engine/internal/apperr"
)

const UserAgent = "LeadHunt/1.0 (+local)"

// GetJSON performs a GET and decodes the body into out. Failures come back
// as *apperr.Error: transport problems are Network, non-2xx statuses are
// classified by apperr.Status, undecodable bodies are Parse.
func GetJSON(ctx context.Context, hc *http.Client, source, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperr.New(apperr.Config, source, "build request", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return apperr.New(apperr.Network, source, source+" get", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		e := apperr.Status(source, source+" get", res.StatusCode)
		if len(b) > 0 {
			e.Err = fmt.Errorf("body=%q", string(b))
		}
		return e
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.New(apperr.Parse, source, source+" decode", err)
	}
	return nil
}
