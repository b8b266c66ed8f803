package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ostapdev/go-shop/app/repositories"
)

const (
	postPageLimit        = 100
	postCountryCode      = "UA"
	postDivisionCategory = "PostBranch"
)

// PostClient talks to the postal provider's directory API. Every call
// authorizes with the static API key first and carries the short-lived JWT
// the provider hands back.
type PostClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPostClient(baseURL, apiKey string) *PostClient {
	return &PostClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type authorizeResponse struct {
	JWT string `json:"jwt"`
}

type wireRegion struct {
	ID     uint        `json:"id"`
	Name   string      `json:"name"`
	Parent *wireRegion `json:"parent,omitempty"`
}

type wireDivision struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Settlement string     `json:"settlement"`
	Region     wireRegion `json:"region"`
}

type divisionsPage struct {
	Data        []wireDivision `json:"data"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
}

func (c *PostClient) authorize(ctx context.Context) (string, error) {
	endpoint := c.baseURL + "/clients/authorization/?apiKey=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build authorize request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("authorize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authorize request failed with status %d", resp.StatusCode)
	}

	var parsed authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode authorize response: %w", err)
	}
	if parsed.JWT == "" {
		return "", fmt.Errorf("authorize response carried no token")
	}
	return parsed.JWT, nil
}

// fetchPage pulls one directory page, limited to branch offices inside the
// home country. Without the filters the provider returns every division of
// every country it serves.
func (c *PostClient) fetchPage(ctx context.Context, token string, page int) (*divisionsPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(postPageLimit))
	query.Set("countryCodes", postCountryCode)
	query.Set("divisionCategories", postDivisionCategory)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/divisions?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build divisions request: %w", err)
	}
	req.Header.Set("Authorization", token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("divisions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("divisions request failed with status %d", resp.StatusCode)
	}

	var parsed divisionsPage
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode divisions page %d: %w", page, err)
	}
	return &parsed, nil
}

// FetchDirectory pulls the complete office directory page by page. Offices
// nested under a sub-region are reported under the top-most parent region,
// matching how the storefront groups them.
func (c *PostClient) FetchDirectory(ctx context.Context) ([]repositories.DirectoryEntry, error) {
	token, err := c.authorize(ctx)
	if err != nil {
		return nil, err
	}

	var entries []repositories.DirectoryEntry
	for page := 1; ; page++ {
		parsed, err := c.fetchPage(ctx, token, page)
		if err != nil {
			return nil, err
		}

		for _, division := range parsed.Data {
			entries = append(entries, repositories.DirectoryEntry{
				OfficeID:       division.ID,
				OfficeName:     division.Name,
				OfficeStatus:   division.Status,
				SettlementName: division.Settlement,
				RegionName:     topRegion(division.Region).Name,
			})
		}

		if parsed.LastPage == 0 || parsed.CurrentPage >= parsed.LastPage {
			break
		}
	}
	return entries, nil
}

func topRegion(region wireRegion) wireRegion {
	for region.Parent != nil {
		region = *region.Parent
	}
	return region
}
