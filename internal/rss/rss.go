// Package rss loads the feed list and turns feed items into digest entries.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/weeklydigest/internal/news"
)

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads RSS feeds list from YAML file. Blank and repeated URLs are
// dropped.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Feeds))
	urls := make([]string, 0, len(cfg.Feeds))
	for _, u := range cfg.Feeds {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls, nil
}

// Result is the outcome of fetching a feed list.
type Result struct {
	Items  []*gofeed.Item
	OK     int
	Failed int
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	parser *gofeed.Parser
	log    *slog.Logger
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "Mozilla/5.0"
	return &Fetcher{parser: parser, log: log}
}

// FetchAll downloads and parses every feed in order. A failing feed is logged
// and skipped; the items of the others are kept.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) Result {
	var res Result
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		feed, err := f.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			f.log.Warn("error parsing feed", "source", url, "error", err)
			res.Failed++
			continue
		}
		res.Items = append(res.Items, feed.Items...)
		res.OK++
		f.log.Debug("feed loaded", "source", url, "items", len(feed.Items))
	}

	f.log.Info("feeds processed", "ok", res.OK, "failed", res.Failed, "total", len(urls))
	return res
}

// ToEntries converts feed items into entries. Items without a link or title
// are skipped. The publication time is the item's published date, else its
// updated date, else now.
func ToEntries(items []*gofeed.Item, now time.Time) []news.Entry {
	entries := make([]news.Entry, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		link := strings.TrimSpace(it.Link)
		title := strings.TrimSpace(it.Title)
		if link == "" || title == "" {
			continue
		}

		published := now
		switch {
		case it.PublishedParsed != nil:
			published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			published = *it.UpdatedParsed
		}

		description := it.Description
		if strings.TrimSpace(description) == "" {
			description = it.Content
		}

		entries = append(entries, news.Entry{
			Title:       title,
			Link:        link,
			Published:   published.UTC(),
			Source:      news.SourceFromLink(link),
			Description: description,
		})
	}
	return entries
}
