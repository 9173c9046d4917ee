package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopvoice/function-gateway/internal/infrastructure/metrics"
)

const accessTokenHeader = "X-Shopify-Access-Token"

var (
	// ErrMissingAccessToken is returned before any I/O when no credential is supplied.
	ErrMissingAccessToken = errors.New("storefront access token is required")
	// ErrDomainNotAllowed means the tenant domain fails the configured suffix allow-list.
	ErrDomainNotAllowed = errors.New("tenant domain is not an allowed storefront host")
)

// Error is a failed storefront call: a transport status or GraphQL errors.
type Error struct {
	TenantDomain string
	StatusCode   int
	Messages     []string
	Timeout      bool
	Err          error
}

func (e *Error) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("storefront %s: request timed out", e.TenantDomain)
	case len(e.Messages) > 0:
		return fmt.Sprintf("storefront %s: graphql errors: %s", e.TenantDomain, strings.Join(e.Messages, "; "))
	case e.Err != nil:
		return fmt.Sprintf("storefront %s: %v", e.TenantDomain, e.Err)
	default:
		return fmt.Sprintf("storefront %s: unexpected status %d", e.TenantDomain, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	Scheme          string
	APIVersion      string
	Timeout         time.Duration
	ThrottleLowMark float64
	AllowedSuffixes []string
	// Endpoint overrides the per-tenant URL; used to point tests at a local server.
	Endpoint func(tenantDomain string) string
}

// Client is a thin GraphQL client for tenant storefront admin APIs.
// It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	opts   Options
	tracer trace.Tracer
	log    zerolog.Logger
}

// NewClient builds a client with a pooled HTTP transport and no retries.
func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.Scheme == "" {
		opts.Scheme = "https"
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2024-10"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		opts:   opts,
		tracer: otel.Tracer("storefront"),
		log:    log.With().Str("component", "storefront-client").Logger(),
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []graphQLError  `json:"errors"`
	Extensions *struct {
		Cost *struct {
			RequestedQueryCost float64 `json:"requestedQueryCost"`
			ThrottleStatus     *struct {
				MaximumAvailable   float64 `json:"maximumAvailable"`
				CurrentlyAvailable float64 `json:"currentlyAvailable"`
				RestoreRate        float64 `json:"restoreRate"`
			} `json:"throttleStatus"`
		} `json:"cost"`
	} `json:"extensions"`
}

// Query runs one GraphQL operation against the tenant's storefront and returns
// its data member. Any GraphQL error fails the whole call.
func (c *Client) Query(ctx context.Context, tenantDomain, accessToken, query string, variables map[string]any) (json.RawMessage, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingAccessToken
	}
	if !c.allowed(tenantDomain) {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotAllowed, tenantDomain)
	}

	ctx, span := c.tracer.Start(ctx, "storefront.Query", trace.WithAttributes(
		attribute.String("storefront.tenant", tenantDomain),
	))
	defer span.End()

	start := time.Now()
	data, err := c.do(ctx, tenantDomain, accessToken, query, variables)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		var sfErr *Error
		if errors.As(err, &sfErr) && sfErr.Timeout {
			outcome = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	metrics.RecordStorefrontRequest(outcome, elapsed.Seconds())
	return data, err
}

func (c *Client) do(ctx context.Context, tenantDomain, accessToken, query string, variables map[string]any) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(accessTokenHeader, accessToken).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		Post(c.endpoint(tenantDomain))
	if err != nil {
		return nil, &Error{
			TenantDomain: tenantDomain,
			Timeout:      isTimeout(ctx, err),
			Err:          err,
		}
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		// Error bodies are not reliably shaped; the status is what matters.
		return nil, &Error{TenantDomain: tenantDomain, StatusCode: resp.StatusCode()}
	}

	var body graphQLResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &Error{TenantDomain: tenantDomain, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Errors) > 0 {
		return nil, &Error{TenantDomain: tenantDomain, StatusCode: resp.StatusCode(), Messages: messages(body.Errors)}
	}

	c.observeThrottle(tenantDomain, &body)

	if len(body.Data) == 0 || string(body.Data) == "null" {
		return nil, &Error{TenantDomain: tenantDomain, StatusCode: resp.StatusCode(), Err: errors.New("response has no data")}
	}
	return body.Data, nil
}

// observeThrottle warns when the remaining query budget is below the low-water
// mark. The call itself still succeeds.
func (c *Client) observeThrottle(tenantDomain string, body *graphQLResponse) {
	if c.opts.ThrottleLowMark <= 0 || body.Extensions == nil || body.Extensions.Cost == nil {
		return
	}
	status := body.Extensions.Cost.ThrottleStatus
	if status == nil || status.CurrentlyAvailable >= c.opts.ThrottleLowMark {
		return
	}

	metrics.RecordThrottleWarning()
	c.log.Warn().
		Str("tenant", tenantDomain).
		Float64("currently_available", status.CurrentlyAvailable).
		Float64("maximum_available", status.MaximumAvailable).
		Float64("restore_rate", status.RestoreRate).
		Float64("requested_cost", body.Extensions.Cost.RequestedQueryCost).
		Float64("low_water_mark", c.opts.ThrottleLowMark).
		Msg("storefront query budget running low")
}

func (c *Client) endpoint(tenantDomain string) string {
	if c.opts.Endpoint != nil {
		return c.opts.Endpoint(tenantDomain)
	}
	return fmt.Sprintf("%s://%s/admin/api/%s/graphql.json", c.opts.Scheme, tenantDomain, c.opts.APIVersion)
}

func (c *Client) allowed(tenantDomain string) bool {
	if tenantDomain == "" || strings.ContainsAny(tenantDomain, "/?#@ ") {
		return false
	}
	if len(c.opts.AllowedSuffixes) == 0 {
		return true
	}
	for _, suffix := range c.opts.AllowedSuffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}
		if tenantDomain == strings.TrimPrefix(suffix, ".") || strings.HasSuffix(tenantDomain, "."+strings.TrimPrefix(suffix, ".")) {
			return true
		}
	}
	return false
}

func messages(errs []graphQLError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
