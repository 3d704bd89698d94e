package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/richxcame/expense-tracker/pkg/httpclient"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"github.com/richxcame/expense-tracker/pkg/resilience"
	"go.uber.org/zap"
)

// DatasetPlaceholder may appear in the feed URL, e.g.
// https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@{dataset}/v1/currencies.
// Without it the dataset becomes a path segment: <feed>/<dataset>/<from>.json.
const DatasetPlaceholder = "{dataset}"

// ErrRateNotInResponse is returned when the feed answered but did not list
// the requested pair
var ErrRateNotInResponse = errors.New("rate not present in feed response")

// HTTPFetcher reads rates from a daily-rates JSON feed
type HTTPFetcher struct {
	feedURL string
	client  *httpclient.Client
	retry   resilience.RetryConfig
}

// NewHTTPFetcher creates a fetcher. client should bound each request with the
// per-attempt timeout; retry drives the attempts and backoff.
func NewHTTPFetcher(feedURL string, client *httpclient.Client, retry resilience.RetryConfig) *HTTPFetcher {
	if retry.Name == "" {
		retry.Name = "rates.fetch"
	}
	return &HTTPFetcher{feedURL: feedURL, client: client, retry: retry}
}

// NewHTTPFetcherFromConfig builds a fetcher from the rates config: a
// per-attempt timeout and capped exponential backoff without jitter
func NewHTTPFetcherFromConfig(cfg *config.RatesConfig) *HTTPFetcher {
	return NewHTTPFetcher(cfg.FeedURL, httpclient.NewClient("", cfg.AttemptTimeout), resilience.RetryConfig{
		MaxAttempts:       cfg.MaxAttempts,
		InitialBackoff:    cfg.InitialBackoff,
		MaxBackoff:        cfg.MaxBackoff,
		BackoffMultiplier: 2.0,
	})
}

// FetchFromAPI returns the from->to rate from the given dataset. On the first
// attempt a failing historical dataset is retried against "latest" before
// backing off. After the last attempt the last error is returned.
func (f *HTTPFetcher) FetchFromAPI(ctx context.Context, from, to, dataset string) (float64, error) {
	from = strings.ToLower(from)
	to = strings.ToLower(to)
	if dataset == "" {
		dataset = LatestDataset
	}

	rate, err := resilience.Do(ctx, f.retry, func(ctx context.Context) (float64, error) {
		rate, err := f.fetchOnce(ctx, from, to, dataset)
		if err == nil {
			return rate, nil
		}

		if resilience.Attempt(ctx) == 1 && dataset != LatestDataset {
			latest, latestErr := f.fetchOnce(ctx, from, to, LatestDataset)
			if latestErr == nil {
				logger.WithContext(ctx).Warn("historical rate unavailable, using latest",
					zap.String("from", from),
					zap.String("to", to),
					zap.String("dataset", dataset),
					zap.Error(err),
				)
				return latest, nil
			}
		}

		return 0, err
	})
	if err != nil {
		fetchFailures.Inc()
		return 0, fmt.Errorf("failed to fetch %s->%s rate from %s dataset: %w", from, to, dataset, err)
	}

	return rate, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, from, to, dataset string) (float64, error) {
	body, err := f.client.Get(ctx, f.datasetURL(dataset, from), nil)
	if err != nil {
		fetchAttempts.WithLabelValues(datasetKind(dataset), "error").Inc()
		return 0, err
	}

	rate, err := parseRate(body, from, to)
	if err != nil {
		fetchAttempts.WithLabelValues(datasetKind(dataset), "invalid").Inc()
		return 0, err
	}

	fetchAttempts.WithLabelValues(datasetKind(dataset), "ok").Inc()
	return rate, nil
}

func (f *HTTPFetcher) datasetURL(dataset, from string) string {
	dataset = url.PathEscape(dataset)
	from = url.PathEscape(from)
	if strings.Contains(f.feedURL, DatasetPlaceholder) {
		base := strings.ReplaceAll(f.feedURL, DatasetPlaceholder, dataset)
		return strings.TrimRight(base, "/") + "/" + from + ".json"
	}
	return strings.TrimRight(f.feedURL, "/") + "/" + dataset + "/" + from + ".json"
}

// parseRate extracts response[from][to]. The feed also carries a "date" key
// next to the base currency object.
func parseRate(body []byte, from, to string) (float64, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("failed to decode rate feed response: %w", err)
	}

	raw, ok := payload[from]
	if !ok {
		return 0, fmt.Errorf("%w: base %s", ErrRateNotInResponse, from)
	}

	var table map[string]float64
	if err := json.Unmarshal(raw, &table); err != nil {
		return 0, fmt.Errorf("failed to decode %s rate table: %w", from, err)
	}

	rate, ok := table[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s->%s", ErrRateNotInResponse, from, to)
	}
	return rate, nil
}
