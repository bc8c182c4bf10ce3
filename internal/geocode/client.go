// Package geocode reverse-geocodes a coordinate pair into structured
// address components through a maps-style JSON API. Forward geocoding is
// not supported.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Address is the structured result of a reverse geocode.
type Address struct {
	Street     string
	City       string
	Province   string
	PostalCode string
}

// Client is the reverse-geocoding client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a geocoding client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type component struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type result struct {
	AddressComponents []component `json:"address_components"`
}

type response struct {
	Status  string   `json:"status"`
	Results []result `json:"results"`
}

// Reverse resolves a latitude/longitude pair to an address. A non-OK
// status or an empty result set is an error; the caller decides whether
// to surface or swallow it.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Address, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/maps/api/geocode/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var decoded response
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return nil, fmt.Errorf("geocoder failed: %s", decoded.Status)
	}

	// Collapse the first result's components into a type -> name lookup.
	byType := make(map[string]string)
	for _, comp := range decoded.Results[0].AddressComponents {
		for _, t := range comp.Types {
			byType[t] = comp.LongName
		}
	}

	addr := &Address{
		City:       byType["locality"],
		Province:   byType["administrative_area_level_1"],
		PostalCode: byType["postal_code"],
	}
	addr.Street = strings.TrimSpace(byType["route"] + " " + byType["street_number"])
	return addr, nil
}
