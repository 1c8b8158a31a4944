// Package galnet fetches GalNet news articles and normalizes them into
// knowledge entries for the diary's lore retrieval.
package galnet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/mudguts/cmdrlog/internal/utils"
	"github.com/mudguts/cmdrlog/pkg/knowledge"
)

const (
	DefaultBaseURL = "https://community.elitedangerous.com"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"
	articlesFile   = "galnet_articles.json"
)

// Article is one GalNet news item as published on the community site.
type Article struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Content string `json:"content"`
	Link    string `json:"link"`
}

type Fetcher struct {
	baseURL string
	client  *http.Client
}

func NewFetcher(baseURL string) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  rc.StandardClient(),
	}
}

// FetchLatest retrieves the current GalNet front page and returns every
// article on it. Articles that cannot be parsed are skipped with a warning.
func (f *Fetcher) FetchLatest(ctx context.Context) ([]Article, error) {
	doc, err := f.get(ctx, f.baseURL+"/galnet")
	if err != nil {
		return nil, err
	}

	var articles []Article
	doc.Find("h3.hiLite.galnetNewsArticleTitle").Each(func(_ int, title *goquery.Selection) {
		href, _ := title.Find("a").Attr("href")
		if !strings.Contains(href, "/galnet/uid/") {
			return
		}
		uid := strings.Trim(href[strings.LastIndex(href, "/uid/")+len("/uid/"):], "/")
		article := Article{
			UID:   uid,
			Title: strings.TrimSpace(title.Text()),
			Link:  f.baseURL + "/galnet/uid/" + uid,
		}
		// The first paragraph after the title is the in-game date, the rest
		// is the article body.
		paragraphs := title.NextAllFiltered("p")
		paragraphs.EachWithBreak(func(i int, p *goquery.Selection) bool {
			text := strings.TrimSpace(p.Text())
			switch i {
			case 0:
				article.Date = text
			default:
				if article.Content != "" {
					article.Content += "\n"
				}
				article.Content += text
			}
			return true
		})
		if article.Title == "" || article.Content == "" {
			utils.Log.Warnf("Skipping malformed GalNet article uid=%s", uid)
			return
		}
		articles = append(articles, article)
	})
	return articles, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GalNet fetch failed with HTTP %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// MergeIntoStore appends newly fetched articles to the article archive at
// dir/galnet_articles.json, skipping UIDs already present. It returns the full
// merged list and the number of new articles stored.
func MergeIntoStore(dir string, fetched []Article) ([]Article, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, 0, err
	}
	path := filepath.Join(dir, articlesFile)

	var existing []Article
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			utils.Log.Warnf("Corrupt article store %s, rebuilding: %v", path, err)
			existing = nil
		}
	}

	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		seen[a.UID] = struct{}{}
	}
	added := 0
	for _, a := range fetched {
		if _, dup := seen[a.UID]; dup {
			continue
		}
		seen[a.UID] = struct{}{}
		existing = append(existing, a)
		added++
	}
	if added == 0 {
		return existing, 0, nil
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return nil, 0, err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return nil, 0, err
	}
	return existing, added, nil
}

// Normalize converts articles into knowledge entries and writes them as an
// entry list the knowledge loader understands.
func Normalize(articles []Article, outPath string) error {
	entries := make([]knowledge.Entry, 0, len(articles))
	for _, a := range articles {
		uid := a.UID
		if uid == "" {
			uid = "unknown"
		}
		entries = append(entries, knowledge.Entry{
			ID:          "galnet_" + uid,
			Name:        a.Title,
			Description: strings.TrimSpace(a.Content),
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, append(data, '\n'), 0o644)
}
