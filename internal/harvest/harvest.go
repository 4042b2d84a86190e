package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/gridintel/internal/config"
)

// Discovery is one PDF link found on a TSO page, with its discovery
// metadata.
type Discovery struct {
	Country      string    `json:"country"`
	TSO          string    `json:"tso"`
	URL          string    `json:"url"`
	Filename     string    `json:"filename"`
	SourcePage   string    `json:"source_page"`
	LinkText     string    `json:"link_text"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// CountrySummary reports one country's harvest outcome.
type CountrySummary struct {
	Country    string   `json:"country"`
	TSO        string   `json:"tso"`
	Discovered int      `json:"documents_discovered"`
	Downloaded int      `json:"documents_downloaded"`
	Failed     int      `json:"documents_failed"`
	LocalPaths []string `json:"local_paths"`
	Errors     []string `json:"errors,omitempty"`
}

// Harvester discovers and downloads TSO planning documents.
type Harvester struct {
	cfg   config.Config
	rules *config.Rules
	log   *slog.Logger

	discoverClient *http.Client
	downloadClient *http.Client

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

func New(cfg config.Config, rules *config.Rules, log *slog.Logger) *Harvester {
	return &Harvester{
		cfg:            cfg,
		rules:          rules,
		log:            log,
		discoverClient: &http.Client{Timeout: cfg.DiscoveryTimeout},
		downloadClient: &http.Client{Timeout: cfg.DownloadTimeout},
		sleep:          time.Sleep,
	}
}

// Discover fetches each of the country's configured pages, enumerates
// anchors, and returns the PDF links whose filename matches one of the
// profile's patterns. A failed page is logged and skipped; it never
// aborts discovery of the remaining pages.
func (h *Harvester) Discover(ctx context.Context, country string) ([]Discovery, error) {
	profile, ok := h.rules.Sources[country]
	if !ok {
		return nil, fmt.Errorf("no TSO source configured for %s", country)
	}

	patterns := make([]*regexp.Regexp, 0, len(profile.PDFPatterns))
	for _, p := range profile.PDFPatterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("invalid PDF pattern %q for %s: %w", p, country, err)
		}
		patterns = append(patterns, re)
	}

	var discovered []Discovery
	for i, pageURL := range profile.DocumentURLs {
		if i > 0 {
			h.sleep(h.cfg.PolitenessDelay)
		}
		links, err := h.scanPage(ctx, pageURL, patterns)
		if err != nil {
			h.log.Error("page scan failed", "country", country, "url", pageURL, "error", err)
			continue
		}
		for _, link := range links {
			link.Country = country
			link.TSO = profile.Name
			discovered = append(discovered, link)
			h.log.Info("found document", "country", country, "filename", link.Filename)
		}
	}

	h.log.Info("discovery complete", "country", country, "documents", len(discovered))
	return discovered, nil
}

func (h *Harvester) scanPage(ctx context.Context, pageURL string, patterns []*regexp.Regexp) ([]Discovery, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)

	resp, err := h.discoverClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var found []Discovery
	now := time.Now()
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref)
		filename := path.Base(full.Path)
		if !strings.EqualFold(path.Ext(filename), ".pdf") {
			return
		}
		for _, re := range patterns {
			if re.MatchString(filename) {
				text := sel.Text()
				if len(text) > 100 {
					text = text[:100]
				}
				found = append(found, Discovery{
					URL:          full.String(),
					Filename:     filename,
					SourcePage:   pageURL,
					LinkText:     text,
					DiscoveredAt: now,
				})
				break
			}
		}
	})
	return found, nil
}
