// Package secclient fetches filings from SEC EDGAR: ticker to CIK mapping,
// filing lists, and XBRL instance documents. All traffic goes through the
// shared HTTP client which enforces the SEC fair-access rate limit; the
// User-Agent must identify the operator per SEC policy.
package secclient

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/razor389/sec-queries/pkg/config"
	"github.com/razor389/sec-queries/pkg/httputil"
	"github.com/razor389/sec-queries/pkg/logger"
)

// Client handles communication with SEC EDGAR
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cache      *diskCache
}

// Filing identifies one filing in EDGAR
type Filing struct {
	Accession string `json:"accession"`
	FilingURL string `json:"filing_url"`
	Date      string `json:"date"`
}

// New creates a new EDGAR client
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httputil.New(log,
			httputil.WithTimeout(cfg.SEC.RequestTimeout),
			httputil.WithRateLimit(cfg.SEC.RequestsPerSec),
			httputil.WithUserAgent(cfg.SEC.UserAgent),
		),
		logger:  log,
		baseURL: strings.TrimRight(cfg.SEC.BaseURL, "/"),
		cache:   newDiskCache(cfg.SEC.CacheDir),
	}
}

var accessionRe = regexp.MustCompile(`accession-number=(\d{10}-\d{2}-\d{6})`)

// CIKForTicker resolves a ticker symbol to its CIK via the SEC's official
// ticker table, cached on disk after the first download.
func (c *Client) CIKForTicker(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(ticker)

	if cik, ok := c.cache.getTicker(ticker); ok {
		return cik, nil
	}

	table, err := c.tickerTable(ctx)
	if err != nil {
		return "", err
	}

	for _, row := range table {
		if strings.EqualFold(row.Ticker, ticker) {
			cik := fmt.Sprintf("%d", row.CIK)
			c.cache.putTicker(ticker, cik)
			return cik, nil
		}
	}

	return "", fmt.Errorf("no CIK found for ticker %s", ticker)
}

type tickerRow struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// tickerTable downloads company_tickers.json, disk-cached across runs
func (c *Client) tickerTable(ctx context.Context) (map[string]tickerRow, error) {
	data, ok := c.cache.getTickerTable()
	if !ok {
		var err error
		data, err = c.httpClient.Get(ctx, c.baseURL+"/files/company_tickers.json", nil)
		if err != nil {
			return nil, fmt.Errorf("fetch ticker table: %w", err)
		}
		c.cache.putTickerTable(data)
	}

	var table map[string]tickerRow
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode ticker table: %w", err)
	}
	return table, nil
}

// atom feed shapes for the filing list
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Updated string `xml:"updated"`
	Link    struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// ListFilings returns the most recent filings of the given form for a CIK,
// newest first
func (c *Client) ListFilings(ctx context.Context, cik, form string, count int) ([]Filing, error) {
	u := fmt.Sprintf("%s/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=%s&owner=exclude&start=0&count=%d&output=atom",
		c.baseURL, url.QueryEscape(cik), url.QueryEscape(form), count)

	body, err := c.httpClient.Get(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("list filings for CIK %s: %w", cik, err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode filing feed: %w", err)
	}

	var out []Filing
	for _, entry := range feed.Entries {
		m := accessionRe.FindStringSubmatch(entry.ID)
		if m == nil || entry.Link.Href == "" {
			continue
		}
		date := entry.Updated
		if i := strings.IndexByte(date, 'T'); i > 0 {
			date = date[:i]
		}
		out = append(out, Filing{
			Accession: m[1],
			FilingURL: c.absoluteURL(entry.Link.Href),
			Date:      date,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"cik":   cik,
		"form":  form,
		"count": len(out),
	}).Debug("Listed filings")

	return out, nil
}

// InstanceURL scrapes a filing index page for the XBRL instance document
// link. Newer filings label it "extracted XBRL instance document" in the
// file table; older ones only expose the _htm.xml artifact.
func (c *Client) InstanceURL(ctx context.Context, filingURL string) (string, error) {
	body, err := c.httpClient.Get(ctx, filingURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch filing index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse filing index: %w", err)
	}

	var found string
	doc.Find("table.tableFile tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}
		desc := strings.ToLower(strings.TrimSpace(cells.Eq(1).Text()))
		if !strings.Contains(desc, "extracted") ||
			!strings.Contains(desc, "instance document") ||
			!strings.Contains(desc, "xbrl") {
			return true
		}
		href, ok := cells.Eq(2).Find("a").Attr("href")
		if ok && strings.HasSuffix(strings.ToLower(href), ".xml") {
			found = href
			return false
		}
		return true
	})

	if found == "" {
		if href, ok := doc.Find(`a[href$="_htm.xml"]`).First().Attr("href"); ok {
			found = href
		}
	}
	if found == "" {
		return "", fmt.Errorf("no XBRL instance document link on %s", filingURL)
	}

	return c.absoluteURL(found), nil
}

// FetchInstance downloads the instance document, disk-cached by URL so
// repeated extractions of the same filing stay offline
func (c *Client) FetchInstance(ctx context.Context, xmlURL string) ([]byte, error) {
	if data, ok := c.cache.getInstance(xmlURL); ok {
		c.logger.WithField("url", xmlURL).Debug("Instance document served from cache")
		return data, nil
	}

	data, err := c.httpClient.Get(ctx, xmlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch instance document: %w", err)
	}

	c.cache.putInstance(xmlURL, data)
	return data, nil
}

func (c *Client) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}
