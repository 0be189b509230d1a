package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.senan.xyz/nofuture/clientutil"
)

// TokenEnv is the environment variable the user token is read from by default.
const TokenEnv = "DISCOGS_USER_TOKEN"

const DefaultBaseURL = "https://api.discogs.com/"

// DefaultRateLimit stays under the 60 requests per minute allowed for
// authenticated clients.
// https://www.discogs.com/developers#page:home,header:home-rate-limiting
const DefaultRateLimit = 65 * time.Second / 60

var ErrMissingCredential = errors.New("missing discogs user token")

type StatusError int

func (se StatusError) Error() string {
	return strconv.Itoa(int(se))
}

type ResultType string

const (
	TypeRelease ResultType = "release"
	TypeMaster  ResultType = "master"
	TypeArtist  ResultType = "artist"
	TypeLabel   ResultType = "label"
)

type Client struct {
	BaseURL   string
	Token     string
	UserAgent string

	// RateLimit is the minimum interval between requests. It's ignored if
	// Limiter is set.
	RateLimit time.Duration
	Limiter   clientutil.Limiter

	initOnce   sync.Once
	HTTPClient *http.Client
}

// Validate checks the client can make authenticated requests.
func (c *Client) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("%w: set $%s", ErrMissingCredential, TokenEnv)
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, r *http.Request, dest any) error {
	c.initOnce.Do(func() {
		limiter := c.Limiter
		if limiter == nil {
			limiter = clientutil.NewLimiter(c.RateLimit)
		}
		c.HTTPClient = clientutil.Wrap(c.HTTPClient, clientutil.Chain(
			clientutil.WithCache(),
			clientutil.WithUserAgent(c.UserAgent),
			clientutil.WithLimiter(limiter),
			clientutil.WithLogging(nil),
		))
	})

	if c.Token == "" {
		return ErrMissingCredential
	}
	r = r.WithContext(ctx)
	r.Header.Set("Authorization", "Discogs token="+c.Token)
	r.Header.Set("Accept", "application/vnd.discogs.v2.discogs+json")

	resp, err := c.HTTPClient.Do(r)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("discogs returned non 2xx: %w", StatusError(resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Search runs a free text database search. The results are in the order
// Discogs ranks them, and may be empty.
//
// https://www.discogs.com/developers#page:database,header:database-search
func (c *Client) Search(ctx context.Context, query string, typ ResultType) ([]SearchResult, error) {
	urlV := url.Values{}
	urlV.Set("q", query)
	if typ != "" {
		urlV.Set("type", string(typ))
	}

	url, err := url.Parse(joinPath(c.BaseURL, "database", "search"))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	url.RawQuery = urlV.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)

	var sr struct {
		Pagination Pagination     `json:"pagination"`
		Results    []SearchResult `json:"results"`
	}
	if err := c.request(ctx, req, &sr); err != nil {
		return nil, fmt.Errorf("request search: %w", err)
	}
	return sr.Results, nil
}

// GetRelease fetches the full release. Search results only carry a summary.
func (c *Client) GetRelease(ctx context.Context, id int) (*Release, error) {
	url, err := url.Parse(joinPath(c.BaseURL, "releases", strconv.Itoa(id)))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)

	var release Release
	if err := c.request(ctx, req, &release); err != nil {
		return nil, fmt.Errorf("request release: %w", err)
	}
	return &release, nil
}

type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

type SearchResult struct {
	ID          int        `json:"id"`
	Type        ResultType `json:"type"`
	Title       string     `json:"title"`
	Year        string     `json:"year"`
	Country     string     `json:"country"`
	Format      []string   `json:"format"`
	Label       []string   `json:"label"`
	Genre       []string   `json:"genre"`
	Style       []string   `json:"style"`
	CatNo       string     `json:"catno"`
	Barcode     []string   `json:"barcode"`
	URI         string     `json:"uri"`
	ResourceURL string     `json:"resource_url"`
	MasterID    int        `json:"master_id"`
}

type Artist struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ANV         string `json:"anv"`
	Join        string `json:"join"`
	Role        string `json:"role"`
	Tracks      string `json:"tracks"`
	ResourceURL string `json:"resource_url"`
}

type Label struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	CatNo          string `json:"catno"`
	EntityType     string `json:"entity_type"`
	EntityTypeName string `json:"entity_type_name"`
	ResourceURL    string `json:"resource_url"`
}

type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty"`
	Text         string   `json:"text"`
	Descriptions []string `json:"descriptions"`
}

type Track struct {
	Position string   `json:"position"`
	Type     string   `json:"type_"`
	Title    string   `json:"title"`
	Duration string   `json:"duration"`
	Artists  []Artist `json:"artists"`
}

type Release struct {
	ID          int      `json:"id"`
	Status      string   `json:"status"`
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Released    string   `json:"released"`
	Country     string   `json:"country"`
	Notes       string   `json:"notes"`
	DataQuality string   `json:"data_quality"`
	MasterID    int      `json:"master_id"`
	URI         string   `json:"uri"`
	ResourceURL string   `json:"resource_url"`
	Artists     []Artist `json:"artists"`
	Labels      []Label  `json:"labels"`
	Formats     []Format `json:"formats"`
	Genres      []string `json:"genres"`
	Styles      []string `json:"styles"`
	Tracklist   []Track  `json:"tracklist"`
}

func joinPath(base string, p ...string) string {
	r, _ := url.JoinPath(base, p...)
	return r
}
