package moderngov

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"moderngov/internal/components/assert"
	"moderngov/internal/components/telemetry"
	"moderngov/lib/platforms/moderngov/xmltree"
	"moderngov/lib/responsecache"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	tracer = otel.Tracer("lib/platforms/moderngov")
	meter  = otel.Meter("lib/platforms/moderngov")
)

const (
	report_client_get         = "client.get"
	report_client_cache_read  = "client.cache-read"
	report_client_cache_write = "client.cache-write"
)

// ForcedSequences are the element names that always decode as sequences,
// the shape of a response must not depend on how many of them it holds.
var ForcedSequences = []string{"meeting", "linkeddoc", "attendee", "agendaitem"}

var (
	wardPath              = []string{"councillorsbyward", "wards", "ward"}
	committeeMeetingsPath = []string{"getmeetings", "committee"}
)

const (
	DefaultTimeout = time.Second * 10
	DefaultTTL     = time.Hour * 24
)

type ClientOptions struct {
	// Store is where decoded responses are kept, it may be shared between
	// clients of different sites.
	Store     responsecache.Store
	Telemetry telemetry.API

	// TTL defaults to DefaultTTL.
	TTL time.Duration
	// Timeout of a single request, defaults to DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond limits requests made by the client, 0 means no limit.
	RequestsPerSecond float64
	CloudflareBypass  bool
}

// Client fetches and decodes responses of the web service of a single
// site, every response goes through the cache.
type Client struct {
	BaseUrl *url.URL

	http  *resty.Client
	cache responseCache
	group singleflight.Group
	tel   telemetry.API
}

func NewClient(site string, opts ClientOptions) (*Client, error) {
	assert.NotNil(opts.Store)
	assert.NotNil(opts.Telemetry)

	baseUrl, err := ResolveSite(site)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	tel := telemetry.NewScopedAPI("moderngov", opts.Telemetry)

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetTLSClientConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	httpClient.SetRetryCount(0)
	httpClient.SetHeader("accept", "text/xml, application/xml")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(math.Max(1, math.Ceil(opts.RequestsPerSecond)))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		BaseUrl: baseUrl,
		http:    httpClient,
		cache:   newResponseCache(opts.Store, baseUrl, opts.TTL),
		tel:     tel,
	}, nil
}

// Get returns the decoded response of endpoint. A live cache entry is
// returned without touching the network, concurrent misses of the same
// request share a single fetch.
func (c *Client) Get(ctx context.Context, endpoint Endpoint, params Params) (xmltree.Node, error) {
	err := endpoint.Valid()
	if err != nil {
		return xmltree.Node{}, err
	}

	ctx, span := tracer.Start(ctx, "client:get")
	defer span.End()
	span.SetAttributes(attribute.String("moderngov.endpoint", string(endpoint)))

	tree, err := c.cache.get(ctx, endpoint, params)
	if err == nil {
		return tree, nil
	}
	if !errors.Is(err, errCacheMiss) {
		c.tel.ReportWarning(
			report_client_cache_read,
			fmt.Errorf("read cached %s: %w", endpoint, err),
		)
	}

	// the fetch is shared by every caller waiting on the key
	fetchCtx := context.WithoutCancel(ctx)
	result, err, _ := c.group.Do(c.cache.key(endpoint, params), func() (any, error) {
		return c.fetch(fetchCtx, endpoint, params)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch response")
		return xmltree.Node{}, err
	}
	return result.(xmltree.Node), nil
}

func (c *Client) fetch(ctx context.Context, endpoint Endpoint, params Params) (xmltree.Node, error) {
	requestUrl := c.BaseUrl.String() + "/" + string(endpoint)
	if len(params) > 0 {
		requestUrl += "?" + params.Encode()
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(requestUrl)
	if err != nil {
		c.tel.ReportBroken(
			report_client_get,
			fmt.Errorf("request %s: %w", requestUrl, err),
		)
		return xmltree.Node{}, &TransportError{URL: requestUrl, Err: err}
	}
	if res.StatusCode() != http.StatusOK {
		c.tel.ReportWarning(
			report_client_get,
			fmt.Errorf("%d error from %s", res.StatusCode(), requestUrl),
		)
		return xmltree.Node{}, &StatusError{URL: requestUrl, StatusCode: res.StatusCode()}
	}

	tree, err := xmltree.Convert(res.Body(), ForcedSequences...)
	if err != nil {
		c.tel.ReportWarning(
			report_client_get,
			fmt.Errorf("decode %s: %w", requestUrl, err),
		)
		return xmltree.Node{}, &DecodeError{URL: requestUrl, Err: err}
	}

	err = c.cache.set(ctx, endpoint, params, tree)
	if err != nil {
		c.tel.ReportWarning(
			report_client_cache_write,
			fmt.Errorf("cache %s: %w", endpoint, err),
		)
	}
	return tree, nil
}

// Close releases idle connections, the store is owned by the caller.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// project follows path from the root of a response and views what it finds
// as a list. An empty element along the way means there is nothing to list.
func project(endpoint Endpoint, tree xmltree.Node, path ...string) ([]xmltree.Node, error) {
	return projectFrom(endpoint, tree, nil, path...)
}

// projectFrom is project for a node found at parent inside a response,
// shape errors name the full path from the root.
func projectFrom(endpoint Endpoint, node xmltree.Node, parent []string, path ...string) ([]xmltree.Node, error) {
	current := node
	for _, key := range path {
		if current.IsNull() {
			return nil, nil
		}
		next, ok := current.Get(key)
		if !ok {
			return nil, shapeError(endpoint, parent, path...)
		}
		current = next
	}
	return current.List(), nil
}

// requiredField reads a leaf that must be present, an empty element reads as "".
func requiredField(endpoint Endpoint, node xmltree.Node, parent []string, key string) (string, error) {
	value, ok := node.Get(key)
	if !ok {
		return "", shapeError(endpoint, parent, key)
	}
	return value.String(), nil
}

func shapeError(endpoint Endpoint, parent []string, path ...string) *ShapeError {
	full := make([]string, 0, len(parent)+len(path))
	full = append(full, parent...)
	full = append(full, path...)
	return &ShapeError{Endpoint: endpoint, Path: full}
}

func (c *Client) CouncillorsByWard(ctx context.Context) ([]xmltree.Node, error) {
	tree, err := c.Get(ctx, GetCouncillorsByWard, nil)
	if err != nil {
		return nil, err
	}
	return project(GetCouncillorsByWard, tree, wardPath...)
}

// MeetingsList returns meetings grouped by committee. Empty arguments are
// sent as "0", which the service reads as "any".
func (c *Client) MeetingsList(ctx context.Context, committeeId, fromDate, toDate string) ([]xmltree.Node, error) {
	params := Params{
		P("lCommitteeId", orZero(committeeId)),
		P("sFromDate", orZero(fromDate)),
		P("sToDate", orZero(toDate)),
	}
	tree, err := c.Get(ctx, GetMeetings, params)
	if err != nil {
		return nil, err
	}
	return project(GetMeetings, tree, committeeMeetingsPath...)
}

func orZero(value string) string {
	if value == "" {
		return "0"
	}
	return value
}

// Meeting returns the detail record of a meeting.
func (c *Client) Meeting(ctx context.Context, meetingId string) (xmltree.Node, error) {
	tree, err := c.Get(ctx, GetMeeting, Params{P("lMeetingId", meetingId)})
	if err != nil {
		return xmltree.Node{}, err
	}

	entries := tree.Entries()
	if len(entries) != 1 {
		return xmltree.Node{}, &ShapeError{Endpoint: GetMeeting, Path: []string{"meeting"}}
	}
	root := entries[0].Value
	if root.Kind() == xmltree.Sequence {
		return first(root), nil
	}
	if inner, ok := root.Get("meeting"); ok && inner.Kind() == xmltree.Sequence {
		return first(inner), nil
	}
	if root.IsNull() {
		return xmltree.NewMapping(), nil
	}
	return root, nil
}

func first(seq xmltree.Node) xmltree.Node {
	items := seq.Items()
	if len(items) == 0 || items[0].IsNull() {
		return xmltree.NewMapping()
	}
	return items[0]
}

func (c *Client) CommitteesList(ctx context.Context) ([]xmltree.Node, error) {
	tree, err := c.Get(ctx, GetCommittees, nil)
	if err != nil {
		return nil, err
	}
	return project(GetCommittees, tree, "committees", "committee")
}

// CommitteesByUser returns the whole response, unmodified.
func (c *Client) CommitteesByUser(ctx context.Context, userId string) (xmltree.Node, error) {
	return c.Get(ctx, GetCommitteesByUser, Params{P("lUserId", userId)})
}

func (c *Client) MemberGroup(ctx context.Context) ([]xmltree.Node, error) {
	params := Params{P("sOrder", ""), P("sShortName", "")}
	tree, err := c.Get(ctx, GetMemberGroup, params)
	if err != nil {
		return nil, err
	}
	return project(GetMemberGroup, tree, "memberlist", "members", "member")
}
