package remote

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the song service the mobile client shipped against.
const DefaultBaseURL = "https://comp2140.uqcloud.net/api"

// Client implements LocationProvider and SongCatalog against the remote song service.
//
// Every request carries the shared api_key query parameter. Reads are retried with
// exponential backoff on transient failures. The client is safe for concurrent use.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
	backoff time.Duration
}

func NewClient(baseURL string, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("remote client: api key is empty")
	}

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("remote client: parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote client: base url %q must be http or https", baseURL)
	}

	return &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(u.String(), "/"),
		backoff: 200 * time.Millisecond,
	}, nil
}
