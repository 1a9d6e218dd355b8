// Package portal discovers agenda export links on the government portal.
// The index page builds its minister lists client-side, so it is rendered
// in headless Chromium before the links are scraped out of the HTML.
package portal

import (
	"context"
	"fmt"
	"html"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"agendacal/internal/fetch"
	appLog "agendacal/internal/log"
)

// Portal section ids holding the two minister collections.
const (
	sectionActive   = "ministres-actifs"
	sectionInactive = "anciens-membres"
)

// DefaultPageTimeout bounds a single page render.
const DefaultPageTimeout = 30 * time.Second

var (
	anchorTag = regexp.MustCompile(`(?is)<a\b[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	innerTags = regexp.MustCompile(`<[^>]+>`)
)

// userAgents mirrors the rotation used for export downloads; the portal is
// less hostile to requests that look like an ordinary browser.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

// RenderHTML navigates a headless Chromium instance to pageURL, waits for
// the document body, and returns the rendered outer HTML.
func RenderHTML(parentCtx context.Context, pageURL string, timeout time.Duration) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("portal: URL is required")
	}
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgents[rand.Intn(len(userAgents))]),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var rendered string
	tasks := chromedp.Tasks{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay for the client-side minister lists.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("portal: chromedp run failed: %w", err)
	}
	return rendered, nil
}

// Discover renders the portal index, walks both minister collections, and
// resolves every minister's agenda export link into a fetch.Source. Ministers
// whose page has no export link are logged and skipped.
func Discover(ctx context.Context, baseURL string) ([]fetch.Source, error) {
	index, err := RenderHTML(ctx, baseURL, DefaultPageTimeout)
	if err != nil {
		return nil, err
	}

	var sources []fetch.Source
	for _, col := range []struct {
		section string
		active  bool
	}{
		{sectionActive, true},
		{sectionInactive, false},
	} {
		paths := MinisterPaths(index, col.section)
		appLog.Info("portal ministers found", "section", col.section, "count", len(paths))

		for _, p := range paths {
			pageURL := baseURL + "/" + p
			page, err := RenderHTML(ctx, pageURL, DefaultPageTimeout)
			if err != nil {
				appLog.Error("minister page render failed", err, "minister", p)
				continue
			}
			csvURL, ok := AgendaExportLink(page, pageURL)
			if !ok {
				appLog.Warn("no agenda export link on minister page", "minister", p)
				continue
			}
			sources = append(sources, fetch.Source{
				ID:     lastSegment(csvURL),
				URL:    csvURL,
				Active: col.active,
			})
		}
	}

	return sources, nil
}

// MinisterPaths extracts minister page path segments from the given portal
// section ("ministres-actifs" or "anciens-membres").
func MinisterPaths(pageHTML, sectionID string) []string {
	section := sectionSlice(pageHTML, sectionID)
	if section == "" {
		return nil
	}

	var paths []string
	for _, m := range anchorTag.FindAllStringSubmatch(section, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" {
			continue
		}
		paths = append(paths, lastSegment(href))
	}
	return paths
}

// AgendaExportLink finds the export download link on a minister page: the
// first anchor whose visible text mentions both "csv" and "agenda". The href
// is resolved against pageURL.
func AgendaExportLink(pageHTML, pageURL string) (string, bool) {
	for _, m := range anchorTag.FindAllStringSubmatch(pageHTML, -1) {
		href := strings.TrimSpace(m[1])
		text := anchorText(m[2])
		if href == "" || text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if strings.Contains(lower, "csv") && strings.Contains(lower, "agenda") {
			return resolveURL(pageURL, href), true
		}
	}
	return "", false
}

// sectionSlice cuts the HTML from a section marker up to the next known
// section marker, so anchors from one collection never leak into the other.
func sectionSlice(pageHTML, sectionID string) string {
	start := strings.Index(pageHTML, `id="`+sectionID+`"`)
	if start < 0 {
		return ""
	}
	section := pageHTML[start:]

	for _, other := range []string{sectionActive, sectionInactive} {
		if other == sectionID {
			continue
		}
		if end := strings.Index(section, `id="`+other+`"`); end > 0 {
			section = section[:end]
		}
	}
	return section
}

// anchorText strips inner markup and normalizes whitespace in an anchor's
// visible text.
func anchorText(inner string) string {
	text := innerTags.ReplaceAllString(inner, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func resolveURL(base, href string) string {
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	hu, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(hu).String()
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
