package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"
)

const maxPageBytes = 2 << 20 //2mb of html is plenty for text comparison

func (c *httpCollaborator) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || looksLikeHTML(body) {
		return HTMLToText(string(body)), nil
	}
	return string(body), nil
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(string(body[:min(256, len(body))]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

// HTMLToText strips tags and collapses whitespace. Script and style bodies
// are dropped entirely - they would poison the similarity comparison with
// code tokens.
func HTMLToText(html string) string {
	var b strings.Builder
	b.Grow(len(html) / 2)

	inTag := false
	skipUntil := "" // closing tag for script/style blocks
	i := 0
	for i < len(html) {
		ch := html[i]
		if skipUntil != "" {
			if ch == '<' && hasPrefixFold(html[i:], skipUntil) {
				i += len(skipUntil)
				skipUntil = ""
				inTag = true // still inside the closing tag itself
				continue
			}
			i++
			continue
		}
		switch {
		case ch == '<':
			inTag = true
			if hasPrefixFold(html[i:], "<script") {
				skipUntil = "</script"
			} else if hasPrefixFold(html[i:], "<style") {
				skipUntil = "</style"
			}
			i++
		case ch == '>':
			inTag = false
			b.WriteByte(' ')
			i++
		case inTag:
			i++
		default:
			b.WriteByte(ch)
			i++
		}
	}

	return collapseWhitespace(b.String())
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
