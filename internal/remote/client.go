package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/go-github/v82/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/egoavara/brat/internal/version"
)

const (
	// DefaultRawURL serves repository files without the API rate limit
	DefaultRawURL = "https://raw.githubusercontent.com/"

	defaultTimeout  = 30 * time.Second
	defaultMaxTries = 3
)

// Client fetches manifests, releases and theme files from GitHub
type Client struct {
	gh       *github.Client
	http     *http.Client
	rawURL   string
	maxTries uint
	backOff  func() backoff.BackOff
	logger   *zap.Logger
}

type clientOptions struct {
	token      string
	timeout    time.Duration
	maxTries   uint
	apiURL     string
	rawURL     string
	logger     *zap.Logger
	httpClient *http.Client
}

// Option configures a Client
type Option func(*clientOptions)

// WithToken authenticates API requests
func WithToken(token string) Option {
	return func(o *clientOptions) {
		o.token = token
	}
}

// WithTimeout bounds a single HTTP request
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxTries sets how often a transient failure is attempted
func WithMaxTries(n uint) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.maxTries = n
		}
	}
}

// WithBaseURL points the client at a different API and raw content host
func WithBaseURL(apiURL, rawURL string) Option {
	return func(o *clientOptions) {
		o.apiURL = apiURL
		o.rawURL = rawURL
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient creates a GitHub client
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{
		timeout:  defaultTimeout,
		maxTries: defaultMaxTries,
		rawURL:   DefaultRawURL,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token})
		authed := oauth2.NewClient(ctx, ts)
		authed.Timeout = httpClient.Timeout
		httpClient = authed
	}

	gh := github.NewClient(httpClient)
	gh.UserAgent = "brat/" + version.Version
	if o.apiURL != "" {
		u, err := url.Parse(withSlash(o.apiURL))
		if err != nil {
			return nil, fmt.Errorf("invalid API URL: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:       gh,
		http:     httpClient,
		rawURL:   withSlash(o.rawURL),
		maxTries: o.maxTries,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		logger: o.logger,
	}, nil
}

func withSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// retry runs fn with exponential backoff.
// Not-found and rate-limit responses are not retried.
func retry[T any](ctx context.Context, c *Client, what string, fn func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil {
			return v, classify(err)
		}
		return v, nil
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("retrying GitHub request",
				zap.String("request", what),
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		}),
	)
}

func classify(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return backoff.Permanent(fmt.Errorf("%w (resets at %s)", ErrRateLimited, rateErr.Rate.Reset.Format(time.Kitchen)))
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return backoff.Permanent(ErrRateLimited)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		if status == http.StatusNotFound {
			return backoff.Permanent(ErrNotFound)
		}
		if status < 500 {
			return backoff.Permanent(err)
		}
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}

	return err
}

// fetchRaw downloads a file from the raw content host
func (c *Client) fetchRaw(ctx context.Context, repo, path string) ([]byte, error) {
	target := c.rawURL + repo + "/HEAD/" + path

	return retry(ctx, c, target, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "brat/"+version.Version)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, backoff.Permanent(ErrRateLimited)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		return io.ReadAll(resp.Body)
	})
}

// fetchContent reads a file through the contents API
func (c *Client) fetchContent(ctx context.Context, repo, path string) ([]byte, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	return retry(ctx, c, repo+"/"+path, func() ([]byte, error) {
		file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
		if err != nil {
			return nil, err
		}
		if file == nil {
			return nil, backoff.Permanent(fmt.Errorf("%s is a directory", path))
		}
		content, err := file.GetContent()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return []byte(content), nil
	})
}
