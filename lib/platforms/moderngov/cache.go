package moderngov

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"moderngov/lib/platforms/moderngov/xmltree"
	"moderngov/lib/responsecache"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var errCacheMiss = responsecache.ErrNotFound

// responseCache keeps decoded responses of one site.
type responseCache struct {
	store   responsecache.Store
	baseUrl *url.URL
	ttl     time.Duration

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

func newResponseCache(store responsecache.Store, baseUrl *url.URL, ttl time.Duration) responseCache {
	hits, err := meter.Int64Counter(
		"moderngov.cache.hits",
		metric.WithDescription("Responses served from the cache."),
	)
	if err != nil {
		otel.Handle(err)
	}
	misses, err := meter.Int64Counter(
		"moderngov.cache.misses",
		metric.WithDescription("Responses that had to be fetched."),
	)
	if err != nil {
		otel.Handle(err)
	}
	return responseCache{
		store:   store,
		baseUrl: baseUrl,
		ttl:     ttl,
		hits:    hits,
		misses:  misses,
	}
}

// key is the full request url, the site is part of it so several sites can
// share one store.
func (c responseCache) key(endpoint Endpoint, params Params) string {
	key := c.baseUrl.String() + "/" + string(endpoint)
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	return key
}

func (c responseCache) get(ctx context.Context, endpoint Endpoint, params Params) (xmltree.Node, error) {
	ctx, span := tracer.Start(ctx, "cache:get")
	defer span.End()

	key := c.key(endpoint, params)
	span.SetAttributes(attribute.KeyValue{
		Key:   "custom.cache_key",
		Value: attribute.StringValue(key),
	})

	entry, err := c.store.Get(ctx, key)
	if errors.Is(err, responsecache.ErrNotFound) {
		if c.misses != nil {
			c.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", string(endpoint))))
		}
		return xmltree.Node{}, errCacheMiss
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cache entry")
		return xmltree.Node{}, err
	}

	var tree xmltree.Node
	err = json.Unmarshal(entry.Value, &tree)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode cached tree")
		return xmltree.Node{}, err
	}

	if c.hits != nil {
		c.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", string(endpoint))))
	}
	span.SetStatus(codes.Ok, "CACHE HIT")
	return tree, nil
}

func (c responseCache) set(ctx context.Context, endpoint Endpoint, params Params, tree xmltree.Node) error {
	ctx, span := tracer.Start(ctx, "cache:set")
	defer span.End()

	key := c.key(endpoint, params)
	span.SetAttributes(attribute.KeyValue{
		Key:   "custom.cache_key",
		Value: attribute.StringValue(key),
	})

	serialized, err := json.Marshal(tree)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode tree")
		return err
	}
	err = c.store.Set(ctx, key, serialized, c.ttl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cache entry")
		return err
	}
	return nil
}
