// Package facility provides the informational nearby-healthcare lookup.
// Results come from an external places provider and are never persisted.
package facility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrProvider = errors.New("places provider request failed")

// Facility is one nearby healthcare location.
type Facility struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Kind    string  `json:"kind"` // hospital, clinic, pharmacy, doctors
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// PlacesClient looks up healthcare facilities around a coordinate.
type PlacesClient interface {
	Nearby(ctx context.Context, lat, lng float64, radiusMeters int) ([]Facility, error)
}

// OverpassClient queries an Overpass-compatible endpoint.
type OverpassClient struct {
	baseURL string
	http    *http.Client
}

func NewOverpassClient(baseURL string) *OverpassClient {
	return &OverpassClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type overpassResponse struct {
	Elements []struct {
		ID   int64   `json:"id"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		Tags struct {
			Name        string `json:"name"`
			Amenity     string `json:"amenity"`
			Street      string `json:"addr:street"`
			HouseNumber string `json:"addr:housenumber"`
			City        string `json:"addr:city"`
		} `json:"tags"`
	} `json:"elements"`
}

func (c *OverpassClient) Nearby(ctx context.Context, lat, lng float64, radiusMeters int) ([]Facility, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:10];node["amenity"~"hospital|clinic|doctors|pharmacy"](around:%d,%f,%f);out body 50;`,
		radiusMeters, lat, lng)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/interpreter",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %s", ErrProvider, err)
	}

	facilities := []Facility{}
	for _, el := range parsed.Elements {
		if el.Tags.Name == "" {
			continue
		}
		f := Facility{
			ID:   el.ID,
			Name: el.Tags.Name,
			Kind: el.Tags.Amenity,
			Lat:  el.Lat,
			Lng:  el.Lon,
		}
		var parts []string
		if el.Tags.HouseNumber != "" {
			parts = append(parts, el.Tags.HouseNumber)
		}
		if el.Tags.Street != "" {
			parts = append(parts, el.Tags.Street)
		}
		if el.Tags.City != "" {
			parts = append(parts, el.Tags.City)
		}
		f.Address = strings.Join(parts, " ")
		facilities = append(facilities, f)
	}
	return facilities, nil
}
