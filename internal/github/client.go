package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Recorder receives fetch events. internal/metrics provides the Prometheus
// implementation; a nil Recorder disables recording.
type Recorder interface {
	PageFetched()
	CommitFetched(elapsed time.Duration)
	CommitFailed()
}

type noopRecorder struct{}

func (noopRecorder) PageFetched()                {}
func (noopRecorder) CommitFetched(time.Duration) {}
func (noopRecorder) CommitFailed()               {}

// Options configures a Client
type Options struct {
	Token      string
	RateLimit  int    // Requests per second
	MaxWorkers int    // Concurrent commit detail fetches
	PerPage    int    // Commits per list page (max 100)
	BaseURL    string // API root, empty for api.github.com
	HTTPClient *http.Client
	Recorder   Recorder
}

// Client wraps the GitHub API client with rate limiting and concurrency
type Client struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	maxWorkers  int
	perPage     int
	logger      *logrus.Logger
	recorder    Recorder
}

// NewClient creates a new GitHub client with rate limiting
func NewClient(opts Options, logger *logrus.Logger) (*Client, error) {
	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = u
	}

	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 20
	}
	if opts.PerPage <= 0 || opts.PerPage > 100 {
		opts.PerPage = 100
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		maxWorkers:  opts.MaxWorkers,
		perPage:     opts.PerPage,
		logger:      logger,
		recorder:    opts.Recorder,
	}, nil
}

// User is the account a token authenticates as
type User struct {
	Login string
	Name  string
	Email string
}

// AuthenticatedUser returns the account the client's token belongs to
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, classify(err, "fetch authenticated user")
	}
	c.logRateLimit(resp)

	return &User{
		Login: user.GetLogin(),
		Name:  user.GetName(),
		Email: user.GetEmail(),
	}, nil
}

func (c *Client) logRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}

	remaining := resp.Rate.Remaining
	limit := resp.Rate.Limit

	if limit > 0 && remaining < 100 {
		c.logger.WithFields(logrus.Fields{
			"remaining": remaining,
			"limit":     limit,
			"reset":     resp.Rate.Reset.Time,
		}).Warn("GitHub rate limit low")
	}
}
