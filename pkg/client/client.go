package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"

	"github.com/agentwire/go-sdk/pkg/core"
	"github.com/agentwire/go-sdk/pkg/core/events"
	"github.com/agentwire/go-sdk/pkg/encoding/sse"
	"github.com/agentwire/go-sdk/pkg/stream"
)

// Config contains configuration options for the client
type Config struct {
	// Endpoint is the URL events are requested from
	Endpoint string

	// APIKey, when set, is attached to every request
	APIKey string

	// AuthHeader is the header carrying APIKey. Defaults to Authorization,
	// which also gets an AuthScheme prefix (Bearer by default); any other
	// header receives the key verbatim.
	AuthHeader string
	AuthScheme string

	// ConnectTimeout bounds connection setup and response headers
	ConnectTimeout time.Duration

	// ReadIdleTimeout triggers an HTTP/2 health-check ping after this much
	// silence on the stream.
	ReadIdleTimeout time.Duration

	// BufferSize is the subscription channel capacity
	BufferSize int

	Logger *logrus.Logger
}

// Client runs agents on a remote AgentWire server
type Client struct {
	config     Config
	endpoint   *url.URL
	httpClient *http.Client
	logger     *logrus.Logger
}

// New creates a client with the specified configuration
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, &core.ConfigError{
			Field: "Endpoint",
			Value: config.Endpoint,
			Err:   errors.New("endpoint cannot be empty"),
		}
	}

	endpoint, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, &core.ConfigError{
			Field: "Endpoint",
			Value: config.Endpoint,
			Err:   fmt.Errorf("invalid endpoint: %w", err),
		}
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, &core.ConfigError{
			Field: "Endpoint",
			Value: config.Endpoint,
			Err:   fmt.Errorf("unsupported scheme %q", endpoint.Scheme),
		}
	}

	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.ReadIdleTimeout == 0 {
		config.ReadIdleTimeout = 60 * time.Second
	}

	transport := &http.Transport{
		DisableCompression:    true,
		ResponseHeaderTimeout: config.ConnectTimeout,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	// Keep long-lived streams healthy over HTTP/2 with idle pings.
	if h2, err := http2.ConfigureTransports(transport); err == nil {
		h2.ReadIdleTimeout = config.ReadIdleTimeout
		h2.PingTimeout = 15 * time.Second
	}

	return &Client{
		config:   config,
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: transport,
			// No client-level timeout: the stream stays open for the whole run.
		},
		logger: config.Logger,
	}, nil
}

// Run starts an agent run and returns its event subscription. The returned
// subscription delivers events in arrival order and terminates exactly
// once; cancelling it aborts the underlying request.
func (c *Client) Run(ctx context.Context, input *core.RunAgentInput) (*stream.Subscription, error) {
	if input == nil {
		return nil, &core.ConfigError{
			Field: "input",
			Value: input,
			Err:   errors.New("run input cannot be nil"),
		}
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run input: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(runCtx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setAuth(req)

	c.logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint.String(),
		"threadId": input.ThreadID,
		"runId":    input.RunID,
	}).Debug("Starting agent run")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, &core.TransportError{
			Operation: "connect",
			Endpoint:  c.endpoint.String(),
			Err:       err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		if resp.StatusCode == http.StatusConflict {
			err = fmt.Errorf("run %s: %w", input.RunID, core.ErrRunConflict)
		}
		return nil, &core.TransportError{
			Operation: "connect",
			Endpoint:  c.endpoint.String(),
			Err:       err,
		}
	}

	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || mediaType != "text/event-stream" {
		resp.Body.Close()
		cancel()
		return nil, &core.TransportError{
			Operation: "connect",
			Endpoint:  c.endpoint.String(),
			Err:       fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type")),
		}
	}

	sub := stream.NewSubscriptionBuffer(c.config.BufferSize)
	sub.OnCancel(cancel)

	go c.pump(runCtx, cancel, resp.Body, sub)

	return sub, nil
}

// pump reads the event stream to completion, delivering each decoded
// event and finishing the subscription exactly once.
func (c *Client) pump(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser, sub *stream.Subscription) {
	defer cancel()
	defer body.Close()

	decoder := sse.NewDecoder(body).WithLogger(c.logger)
	tracker := events.NewRunTracker()

	for {
		event, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.finish(sub, tracker, nil)
				return
			}
			if ctx.Err() != nil {
				// Consumer cancellation closed the connection under the
				// decoder.
				c.finish(sub, tracker, nil)
				return
			}
			c.finish(sub, tracker, &core.TransportError{
				Operation: "read",
				Endpoint:  c.endpoint.String(),
				Err:       err,
			})
			return
		}

		if err := tracker.Observe(event); err != nil {
			c.logger.WithError(err).WithField("event_type", event.Type()).Warn("Event violates run lifecycle")
		}

		if err := sub.Emit(event); err != nil {
			if errors.Is(err, stream.ErrCancelled) {
				c.finish(sub, tracker, nil)
				return
			}
			c.finish(sub, tracker, err)
			return
		}
	}
}

// finish resolves the subscription terminal state. A stream that ends
// without reaching a terminal run phase is a transport fault even when the
// read itself returned a clean EOF.
func (c *Client) finish(sub *stream.Subscription, tracker *events.RunTracker, err error) {
	if err == nil && !sub.Cancelled() && !tracker.Phase().Terminal() {
		err = &core.TransportError{
			Operation: "read",
			Endpoint:  c.endpoint.String(),
			Err:       fmt.Errorf("stream ended in phase %s: %w", tracker.Phase(), core.ErrStreamClosed),
		}
	}
	if open := tracker.OpenStreams(); len(open) > 0 {
		c.logger.WithField("open_ids", open).Warn("Run terminated with unclosed streams")
	}
	sub.Finish(err)
}

func (c *Client) setAuth(req *http.Request) {
	if c.config.APIKey == "" {
		return
	}

	header := c.config.AuthHeader
	if header == "" {
		header = "Authorization"
	}

	if header == "Authorization" {
		scheme := c.config.AuthScheme
		if scheme == "" {
			scheme = "Bearer"
		}
		req.Header.Set(header, scheme+" "+c.config.APIKey)
		return
	}

	req.Header.Set(header, c.config.APIKey)
}
