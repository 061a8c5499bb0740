package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// HTTPFetcher retrieves artifacts from the datafile service over HTTP.
type HTTPFetcher struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchArtifact downloads the blob behind one artifact path. A 404 or 204
// means the service has no data for the path and is reported as (nil, nil).
func (f *HTTPFetcher) FetchArtifact(ctx context.Context, sessionID, contextID, artifactPath string) (*Artifact, error) {
	u := fmt.Sprintf("%s/api/v1/sessions/%s/contexts/%s/datafiles?path=%s",
		f.baseURL, url.PathEscape(sessionID), url.PathEscape(contextID), url.QueryEscape(artifactPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datafile request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datafile service returned %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read datafile body: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &Artifact{
		Name:        path.Base(artifactPath),
		ContentType: resp.Header.Get("Content-Type"),
		Ref:         u,
		Data:        data,
	}, nil
}
