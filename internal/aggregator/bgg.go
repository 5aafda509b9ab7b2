// Package aggregator pulls game data from the BoardGameGeek XML API and
// mirrors it into the relational store.
package aggregator

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/gamevault/gamevault-go/internal/config"
)

const (
	defaultBaseURL = "https://boardgamegeek.com/xmlapi2"
	maxAttempts    = 3
	retryDelay     = 2 * time.Second
)

// Client talks to the BGG XML API v2. Requests are throttled through a rate
// limiter; the API bans aggressive crawlers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewClient(cfg config.BGGConfig, logger *logrus.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   cfg.APIToken,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		logger:     logger,
	}
}

// Thing is one <item> in a /thing response.
type Thing struct {
	ID          int         `xml:"id,attr"`
	Type        string      `xml:"type,attr"`
	Thumbnail   string      `xml:"thumbnail"`
	Image       string      `xml:"image"`
	Names       []thingName `xml:"name"`
	Description string      `xml:"description"`
	Year        valueAttr   `xml:"yearpublished"`
	MinPlayers  valueAttr   `xml:"minplayers"`
	MaxPlayers  valueAttr   `xml:"maxplayers"`
	PlayingTime valueAttr   `xml:"playingtime"`
	MinAge      valueAttr   `xml:"minage"`
	Links       []Link      `xml:"link"`
	Statistics  statistics  `xml:"statistics"`
	Videos      videoList   `xml:"videos"`
}

type thingName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

// Link is a typed association: boardgamedesigner, boardgameartist,
// boardgamepublisher, boardgamecategory, boardgamemechanic.
type Link struct {
	Type  string `xml:"type,attr"`
	ID    int    `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

type statistics struct {
	Ratings struct {
		Average       valueAttr `xml:"average"`
		AverageWeight valueAttr `xml:"averageweight"`
	} `xml:"ratings"`
}

type videoList struct {
	Videos []ThingVideo `xml:"video"`
}

// ThingVideo is one community video attached to a game.
type ThingVideo struct {
	ID       int    `xml:"id,attr"`
	Title    string `xml:"title,attr"`
	Category string `xml:"category,attr"`
	Language string `xml:"language,attr"`
	Link     string `xml:"link,attr"`
}

type thingItems struct {
	Items []Thing `xml:"item"`
}

// PrimaryName returns the name marked primary, falling back to the first.
func (t Thing) PrimaryName() string {
	for _, name := range t.Names {
		if name.Type == "primary" {
			return name.Value
		}
	}
	if len(t.Names) > 0 {
		return t.Names[0].Value
	}
	return ""
}

func (v valueAttr) Int() *int {
	n, err := strconv.Atoi(v.Value)
	if err != nil {
		return nil
	}
	return &n
}

func (v valueAttr) Float() *float64 {
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil || f == 0 {
		return nil
	}
	return &f
}

func (v valueAttr) String() *string {
	if v.Value == "" {
		return nil
	}
	s := v.Value
	return &s
}

// FetchThings fetches a batch of games by BGG id, including statistics and
// videos. Server errors and network failures are retried with a fixed delay;
// 4xx responses fail immediately.
func (c *Client) FetchThings(ctx context.Context, ids []int) ([]Thing, error) {
	if len(ids) == 0 {
		return []Thing{}, nil
	}

	idParts := make([]string, 0, len(ids))
	for _, id := range ids {
		idParts = append(idParts, strconv.Itoa(id))
	}
	endpoint := fmt.Sprintf("%s/thing?id=%s&stats=1&videos=1",
		c.baseURL, url.QueryEscape(strings.Join(idParts, ",")))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	items, err := ParseThings(body)
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{"requested": len(ids), "received": len(items)}).Debug("bgg fetch complete")
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build bgg request: %w", err)
		}
		if c.apiToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("bgg request failed: %w", err)
			c.logger.WithError(err).WithField("attempt", attempt).Warn("bgg request error, retrying")
			c.sleep(ctx)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("bgg server error: status %d", resp.StatusCode)
			c.logger.WithFields(logrus.Fields{"status": resp.StatusCode, "attempt": attempt}).Warn("bgg server error, retrying")
			c.sleep(ctx)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("bgg request rejected: status %d", resp.StatusCode)
		case readErr != nil:
			lastErr = fmt.Errorf("read bgg response: %w", readErr)
			c.sleep(ctx)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("bgg request failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(retryDelay):
	}
}

// ParseThings decodes a /thing response body.
func ParseThings(body []byte) ([]Thing, error) {
	var items thingItems
	if err := xml.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse bgg response: %w", err)
	}
	return items.Items, nil
}
