package drivestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/privacyops/dsarflow/pkg/common/httpclient"
	"golang.org/x/oauth2/clientcredentials"
)

// Client talks to the folder backend over its REST surface.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
	backoff  time.Duration
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
	}
}

type idResponse struct {
	ID string `json:"id"`
}

func (c *Client) postForID(ctx context.Context, url string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var id string
	err = httpclient.Retry(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("%s: status %d", url, resp.StatusCode)
		}

		var ir idResponse
		if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
			return err
		}
		id = ir.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}

func (c *Client) CreateSubfolder(ctx context.Context, parentID, name string) (string, error) {
	url := fmt.Sprintf("%s/v1/folders", c.baseURL)
	return c.postForID(ctx, url, map[string]string{"parentId": parentID, "name": name})
}

func (c *Client) CopyAndRenameDocument(ctx context.Context, templateID, newName string) (string, error) {
	url := fmt.Sprintf("%s/v1/documents/%s/copy", c.baseURL, templateID)
	return c.postForID(ctx, url, map[string]string{"name": newName})
}

type parentsResponse struct {
	Parents []string `json:"parents"`
}

func (c *Client) MoveDocument(ctx context.Context, documentID, toFolderID string) error {
	parentsURL := fmt.Sprintf("%s/v1/documents/%s/parents", c.baseURL, documentID)

	var current []string
	err := httpclient.Retry(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parentsURL, nil)
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
			return fmt.Errorf("%s: status %d", parentsURL, resp.StatusCode)
		}

		var pr parentsResponse
		if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
			return err
		}
		current = pr.Parents
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"add":    []string{toFolderID},
		"remove": current,
	})
	if err != nil {
		return err
	}

	err = httpclient.Retry(ctx, c.attempts, c.backoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, parentsURL, bytes.NewReader(body))
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
			return fmt.Errorf("%s: status %d", parentsURL, resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
