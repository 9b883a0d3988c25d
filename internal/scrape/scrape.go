// Package scrape extracts watcher and watching counts from public
// profile pages. The API does not expose these totals directly, so this
// is a best-effort fallback; callers must tolerate zero counts.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Scraper fetches and parses public profile pages.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a scraper against the public site.
func New() *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://www.deviantart.com",
	}
}

// NewWithBase creates a scraper against a custom base URL. Used in tests.
func NewWithBase(client *http.Client, baseURL string) *Scraper {
	return &Scraper{httpClient: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// ProfileCounts returns the watcher and watching totals shown on a
// user's public profile. The watchers figure lives on the main page;
// the watching figure on the about page.
func (s *Scraper) ProfileCounts(ctx context.Context, username string) (watchers, watching int, err error) {
	profileDoc, err := s.fetch(ctx, s.baseURL+"/"+username)
	if err != nil {
		return 0, 0, err
	}
	watchers = scrapeWatchers(profileDoc)

	aboutDoc, err := s.fetch(ctx, s.baseURL+"/"+username+"/about")
	if err != nil {
		// Main page succeeded; report what we have.
		return watchers, 0, nil
	}
	watching = scrapeWatching(aboutDoc)

	return watchers, watching, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile page returned %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// scrapeWatchers finds the count rendered next to a "watchers" label.
// The count sits in a div.mTBhrk adjacent to or wrapping the label span.
func scrapeWatchers(doc *goquery.Document) int {
	count := 0
	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(span.Text()), "watchers") {
			return true
		}
		countDiv := span.Prev().Find("div.mTBhrk").First()
		if countDiv.Length() == 0 {
			countDiv = span.Parent().Find("div.mTBhrk").First()
		}
		if countDiv.Length() > 0 {
			count = ParseCount(countDiv.Text())
			return false
		}
		return true
	})
	return count
}

// scrapeWatching finds the div.nGC9Z7 whose parent mentions "watching".
func scrapeWatching(doc *goquery.Document) int {
	count := 0
	doc.Find("div.nGC9Z7").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		parentText := strings.ToLower(div.Parent().Text())
		if strings.Contains(parentText, "watching") {
			count = ParseCount(div.Text())
			return false
		}
		return true
	})
	return count
}

var countPattern = regexp.MustCompile(`([0-9,.]+[KMkm]?)`)

// ParseCount converts a display count like "8.3K" or "1,234" to a
// number. Unparseable text yields zero.
func ParseCount(text string) int {
	match := countPattern.FindString(text)
	if match == "" {
		return 0
	}
	numStr := strings.ReplaceAll(match, ",", "")

	switch {
	case strings.HasSuffix(strings.ToUpper(numStr), "K"):
		f, err := strconv.ParseFloat(numStr[:len(numStr)-1], 64)
		if err != nil {
			return 0
		}
		return int(f * 1000)
	case strings.HasSuffix(strings.ToUpper(numStr), "M"):
		f, err := strconv.ParseFloat(numStr[:len(numStr)-1], 64)
		if err != nil {
			return 0
		}
		return int(f * 1000000)
	default:
		n, err := strconv.Atoi(strings.TrimSuffix(numStr, "."))
		if err != nil {
			return 0
		}
		return n
	}
}
