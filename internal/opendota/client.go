// Package opendota provides a minimal client for the OpenDota REST API.
package opendota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pable/go-dota-narrative/internal/catalog"
	"github.com/pable/go-dota-narrative/internal/model"
)

// DefaultBaseURL is the public OpenDota API root.
const DefaultBaseURL = "https://api.opendota.com/api"

// Client is a minimal OpenDota API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns an OpenDota client. apiKey may be empty; the public API
// accepts anonymous requests at a lower rate limit.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// StatusError reports a non-200 response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.Path, e.Code)
}

// getRaw performs a GET request against the API and returns the body.
func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	u := c.baseURL + path
	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + "api_key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	return b, nil
}

// get performs a GET request and JSON-decodes the response body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	b, err := c.getRaw(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// GetMatchRaw returns the undecoded match document, suitable for caching.
func (c *Client) GetMatchRaw(ctx context.Context, matchID int64) ([]byte, error) {
	return c.getRaw(ctx, fmt.Sprintf("/matches/%d", matchID))
}

// GetMatch fetches and decodes a parsed match.
func (c *Client) GetMatch(ctx context.Context, matchID int64) (*model.Match, error) {
	b, err := c.GetMatchRaw(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return model.ParseMatch(b)
}

// GetItemPopularity returns per-phase item purchase counts for a hero.
func (c *Client) GetItemPopularity(ctx context.Context, heroID int) (*model.ItemPopularity, error) {
	var p model.ItemPopularity
	if err := c.get(ctx, fmt.Sprintf("/heroes/%d/itemPopularity", heroID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type constHero struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
}

type constItem struct {
	ID        int    `json:"id"`
	Dname     string `json:"dname"`
	Cost      int    `json:"cost"`
	Qual      string `json:"qual"`
	Abilities []struct {
		Type string `json:"type"`
	} `json:"abilities"`
}

type constAbility struct {
	Dname string `json:"dname"`
}

// GetCatalog assembles a reference catalog from the heroes, items and
// abilities constants.
func (c *Client) GetCatalog(ctx context.Context) (heroes []catalog.Hero, items []catalog.Item, abilities []catalog.Ability, err error) {
	var hs map[string]constHero
	if err = c.get(ctx, "/constants/heroes", &hs); err != nil {
		return nil, nil, nil, err
	}
	var is map[string]constItem
	if err = c.get(ctx, "/constants/items", &is); err != nil {
		return nil, nil, nil, err
	}
	var as map[string]constAbility
	if err = c.get(ctx, "/constants/abilities", &as); err != nil {
		return nil, nil, nil, err
	}

	for _, h := range hs {
		heroes = append(heroes, catalog.Hero{ID: h.ID, Name: h.Name, LocalizedName: h.LocalizedName})
	}
	sort.Slice(heroes, func(i, j int) bool { return heroes[i].ID < heroes[j].ID })

	for key, it := range is {
		active := false
		for _, a := range it.Abilities {
			if a.Type == "active" {
				active = true
				break
			}
		}
		items = append(items, catalog.Item{
			ID:     it.ID,
			Key:    key,
			Name:   it.Dname,
			Cost:   it.Cost,
			Qual:   it.Qual,
			Recipe: strings.HasPrefix(key, "recipe_"),
			Active: active,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	for key, a := range as {
		if a.Dname == "" {
			continue
		}
		abilities = append(abilities, catalog.Ability{Key: key, Name: a.Dname})
	}
	sort.Slice(abilities, func(i, j int) bool { return abilities[i].Key < abilities[j].Key })
	return heroes, items, abilities, nil
}

// RecentMatch is one entry from /players/{account_id}/recentMatches.
type RecentMatch struct {
	MatchID    int64 `json:"match_id"`
	HeroID     int   `json:"hero_id"`
	PlayerSlot int   `json:"player_slot"`
	StartTime  int64 `json:"start_time"`
	Duration   int   `json:"duration"`
	RadiantWin bool  `json:"radiant_win"`
	// Version is set once OpenDota has parsed the replay; unparsed matches
	// carry no event logs.
	Version *int `json:"version"`
}

// Parsed reports whether the match has replay-derived telemetry.
func (r RecentMatch) Parsed() bool {
	return r.Version != nil
}

// GetRecentMatches returns a player's most recent matches.
func (c *Client) GetRecentMatches(ctx context.Context, accountID int64) ([]RecentMatch, error) {
	var out []RecentMatch
	if err := c.get(ctx, fmt.Sprintf("/players/%d/recentMatches", accountID), &out); err != nil {
		return nil, err
	}
	return out, nil
}
