package rvdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shorepull/internal/services"
)

// Metadata is the fileset description returned by the metadata service.
type Metadata struct {
	SizeBytes      int64
	FileCount      int64
	InstrumentName string
	InstrumentType string
	CruiseID       string
	VesselName     string
}

// HTTPDoer describes the HTTP client used by the metadata service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client looks up fileset metadata over the rvdata HTTP API.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient constructs a metadata client. A nil doer uses a default client
// with the provided timeout.
func NewClient(baseURL string, timeout time.Duration, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  doer,
	}
}

type filesetResponse struct {
	Data []struct {
		Files         int64  `json:"files"`
		TotalBytes    int64  `json:"total_bytes"`
		MakeModelName string `json:"make_model_name"`
		DeviceName    string `json:"device_name"`
		CruiseID      string `json:"cruise_id"`
		VesselName    string `json:"vessel_name"`
	} `json:"data"`
}

// Lookup fetches metadata for a fileset identifier. Network failures and
// malformed responses both surface as metadata errors; callers skip the
// candidate and rely on re-discovery.
func (c *Client) Lookup(ctx context.Context, filesetID string) (Metadata, error) {
	lookupURL := fmt.Sprintf("%s/api/fileset/?fileset_id=%s", c.baseURL, url.QueryEscape(filesetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrMetadata, "enrichment", "build request", filesetID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrMetadata, "enrichment", "lookup fileset", filesetID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, services.Wrap(services.ErrMetadata, "enrichment", "lookup fileset", filesetID,
			fmt.Errorf("metadata service returned %d", resp.StatusCode))
	}

	var payload filesetResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Metadata{}, services.Wrap(services.ErrMetadata, "enrichment", "decode response", filesetID, err)
	}
	if len(payload.Data) == 0 {
		return Metadata{}, services.Wrap(services.ErrMetadata, "enrichment", "lookup fileset", filesetID,
			fmt.Errorf("no metadata for fileset"))
	}

	entry := payload.Data[0]
	return Metadata{
		SizeBytes:      entry.TotalBytes,
		FileCount:      entry.Files,
		InstrumentName: entry.MakeModelName,
		InstrumentType: entry.DeviceName,
		CruiseID:       entry.CruiseID,
		VesselName:     entry.VesselName,
	}, nil
}
