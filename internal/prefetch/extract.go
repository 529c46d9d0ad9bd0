package prefetch

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"morningbrief/internal/calendar"
)

const maxFeedItems = 10

var blankLines = regexp.MustCompile(`\n{3,}`)

// extractArticle returns the main text of an HTML page. Readability is
// tried first; pages it cannot handle fall back to a selector walk.
func extractArticle(body []byte, pageURL *url.URL) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		text := strings.TrimSpace(article.TextContent)
		if text != "" {
			if article.Title != "" {
				text = "# " + strings.TrimSpace(article.Title) + "\n\n" + text
			}
			return cleanText(text), nil
		}
	}

	return htmlToText(body)
}

// htmlToText strips boilerplate elements and collects block-level text.
func htmlToText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .ad, .advertisement, .cookie-banner").Remove()

	root := doc.Find("article, main, [role='main']").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var b strings.Builder
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		b.WriteString("# " + title + "\n\n")
	}
	root.Find("h1, h2, h3, h4, p, li, td, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	})

	return cleanText(b.String()), nil
}

// feedToText renders the latest feed items as a markdown list.
func feedToText(body []byte, locale calendar.Locale) (string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse feed: %w", err)
	}

	var b strings.Builder
	if feed.Title != "" {
		b.WriteString("# " + strings.TrimSpace(feed.Title) + "\n\n")
	}
	for i, item := range feed.Items {
		if i == maxFeedItems {
			break
		}
		b.WriteString("- " + strings.TrimSpace(item.Title))
		if item.PublishedParsed != nil {
			b.WriteString(" (" + locale.FormatTimestamp(*item.PublishedParsed) + ")")
		}
		if item.Link != "" {
			b.WriteString(" " + item.Link)
		}
		b.WriteString("\n")
		if desc := summarizeHTML(item.Description); desc != "" {
			b.WriteString("  " + desc + "\n")
		}
	}
	return cleanText(b.String()), nil
}

// summarizeHTML flattens an HTML fragment to a single line of text.
func summarizeHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}
