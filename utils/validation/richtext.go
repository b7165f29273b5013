package validation

import (
	"bytes"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Formatting tags an editor is allowed to produce. Everything else is
// dropped, keeping its text content.
var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "b": true, "em": true, "i": true,
	"u": true, "s": true, "ul": true, "ol": true, "li": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "blockquote": true, "a": true,
	"span": true, "code": true, "pre": true,
}

// Elements whose content is discarded entirely.
var strippedContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "noscript": true, "template": true,
}

// SanitizeRichText reduces editor HTML to a safe subset: allowed tags keep
// no attributes except http(s)/mailto href on links, and executable content
// is removed.
func SanitizeRichText(input string) string {
	z := xhtml.NewTokenizer(strings.NewReader(SanitizeString(input)))
	var out bytes.Buffer
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			// io.EOF or a malformed tail; keep what was sanitized so far
			return strings.TrimSpace(out.String())

		case xhtml.TextToken:
			if skipDepth == 0 {
				out.WriteString(html.EscapeString(string(z.Text())))
			}

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			if strippedContent[tok.Data] {
				if tt == xhtml.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[tok.Data] {
				continue
			}
			out.WriteString("<" + tok.Data)
			if tok.Data == "a" {
				if href, ok := safeHref(tok.Attr); ok {
					out.WriteString(` href="` + html.EscapeString(href) + `" rel="noopener noreferrer"`)
				}
			}
			if tt == xhtml.SelfClosingTagToken || tok.Data == "br" {
				out.WriteString(" />")
			} else {
				out.WriteString(">")
			}

		case xhtml.EndTagToken:
			tok := z.Token()
			if strippedContent[tok.Data] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[tok.Data] || tok.Data == "br" {
				continue
			}
			out.WriteString("</" + tok.Data + ">")
		}
	}
}

func safeHref(attrs []xhtml.Attribute) (string, bool) {
	for _, a := range attrs {
		if a.Key != "href" {
			continue
		}
		v := strings.TrimSpace(a.Val)
		lower := strings.ToLower(v)
		if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "mailto:") {
			return v, true
		}
	}
	return "", false
}
