// Package mediawiki implements a paged Action API client for bulk page
// content retrieval.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/pipeline"
)

// Config controls the API client.
type Config struct {
	// APIURL is the full Action API endpoint, e.g.
	// https://en.wikipedia.org/w/api.php.
	APIURL    string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches page content batches from a MediaWiki Action API.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Client. Each worker owns its own Client so the
// underlying keep-alive connections are never shared across goroutines.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type apiResponse struct {
	Continue map[string]string `json:"continue"`
	Error    *apiError         `json:"error"`
	Query    struct {
		Pages []apiPage `json:"pages"`
	} `json:"query"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type apiPage struct {
	PageID    int    `json:"pageid"`
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Revisions []struct {
		Slots struct {
			Main struct {
				Content string `json:"content"`
			} `json:"main"`
		} `json:"slots"`
	} `json:"revisions"`
}

// FetchPages implements pipeline.PageFetcher. It issues one bulk revisions
// query for the batch and follows the API continue protocol until the
// server reports the result set complete. Pages without a title or with
// empty content are omitted. The sequence is restartable: each call issues
// a fresh query.
func (c *Client) FetchPages(ctx context.Context, ids []pipeline.PageID) iter.Seq2[pipeline.Page, error] {
	return func(yield func(pipeline.Page, error) bool) {
		cont := map[string]string{}
		for {
			resp, err := c.query(ctx, ids, cont)
			if err != nil {
				yield(pipeline.Page{}, err)
				return
			}
			for _, pg := range resp.Query.Pages {
				if pg.Missing || pg.Title == "" || len(pg.Revisions) == 0 {
					continue
				}
				text := pg.Revisions[0].Slots.Main.Content
				if text == "" {
					continue
				}
				page := pipeline.Page{
					ID:    pipeline.PageID(strconv.Itoa(pg.PageID)),
					Title: pg.Title,
					Text:  text,
				}
				if !yield(page, nil) {
					return
				}
			}
			if len(resp.Continue) == 0 {
				return
			}
			cont = resp.Continue
		}
	}
}

func (c *Client) query(ctx context.Context, ids []pipeline.PageID, cont map[string]string) (*apiResponse, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "revisions")
	params.Set("rvprop", "content")
	params.Set("rvslots", "main")
	params.Set("pageids", joinIDs(ids))
	for k, v := range cont {
		params.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build api request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query pageids: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query pageids: unexpected status %d", resp.StatusCode)
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode api response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("api error %s: %s", decoded.Error.Code, decoded.Error.Info)
	}
	c.logger.Debug("api page received",
		zap.Int("pages", len(decoded.Query.Pages)),
		zap.Bool("continued", len(decoded.Continue) > 0),
	)
	return &decoded, nil
}

func joinIDs(ids []pipeline.PageID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, "|")
}
