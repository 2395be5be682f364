package sheetstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/privacyops/dsarflow/pkg/common/httpclient"
	"golang.org/x/oauth2/clientcredentials"
)

// Client talks to the sheet backend over its REST surface. Writes are
// confirmed: a nil error means the backend acknowledged the mutation.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
	backoff  time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Options struct {
	BaseURL       string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	CallTimeout   time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

func NewClient(opts Options) *Client {
	hc := httpclient.New(opts.CallTimeout)
	if opts.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		hc = cc.Client(context.Background())
		hc.Timeout = opts.CallTimeout
	}

	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     hc,
		attempts: attempts,
		backoff:  backoff,
		locks:    make(map[string]*sync.Mutex),
	}
}

// sheetLock serializes next-empty-row discovery and writes per sheet so
// two writers cannot land on the same destination row.
func (c *Client) sheetLock(sheetID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[sheetID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[sheetID] = l
	}
	return l
}

type valuesResponse struct {
	Values [][]string `json:"values"`
}

func (c *Client) fetchValues(ctx context.Context, sheetID string) ([][]string, error) {
	var values [][]string
	url := fmt.Sprintf("%s/v1/sheets/%s/values", c.baseURL, sheetID)

	err := httpclient.Retry(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("sheet %s values: status %d", sheetID, resp.StatusCode)
		}

		var vr valuesResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
			return err
		}
		values = vr.Values
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return values, nil
}

func (c *Client) ReadAll(ctx context.Context, sheetID string) ([]Row, error) {
	values, err := c.fetchValues(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	headers := values[0]
	rows := make([]Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		m := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(raw) {
				m[h] = raw[j]
			} else {
				m[h] = ""
			}
		}
		rows = append(rows, Row{Index: i + 2, Headers: headers, Values: m})
	}
	return rows, nil
}

func (c *Client) NextEmptyRow(ctx context.Context, sheetID string) (int, error) {
	values, err := c.fetchValues(ctx, sheetID)
	if err != nil {
		return 0, err
	}

	filled := 0
	for _, raw := range values {
		if len(raw) > 0 && raw[0] != "" {
			filled++
		}
	}
	return filled + 1, nil
}

func (c *Client) WriteCell(ctx context.Context, sheetID string, row, col int, value string) error {
	body, err := json.Marshal(map[string]string{"value": value})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/v1/sheets/%s/cells/%d/%d", c.baseURL, sheetID, row, col)

	err = httpclient.Retry(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("sheet %s cell (%d,%d): status %d", sheetID, row, col, resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (c *Client) AppendRow(ctx context.Context, sheetID string, cells []string) (int, error) {
	lock := c.sheetLock(sheetID)
	lock.Lock()
	defer lock.Unlock()

	row, err := c.NextEmptyRow(ctx, sheetID)
	if err != nil {
		return 0, err
	}
	for i, v := range cells {
		if err := c.WriteCell(ctx, sheetID, row, i+1, v); err != nil {
			return 0, err
		}
	}
	return row, nil
}
