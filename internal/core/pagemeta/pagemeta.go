// Package pagemeta pulls display metadata out of an HTML document
package pagemeta

import (
	"strings"

	"golang.org/x/net/html"
)

// Meta is what we show next to a detection
type Meta struct {
	Title     string `json:"title,omitempty"     example:"Example Domain"`
	Generator string `json:"generator,omitempty" example:"WordPress 6.5"`
}

// maxTitle bounds titles taken from hostile pages
const maxTitle = 300

// Extract reads the first <title> and the first <meta name="generator">
// malformed input yields whatever was found before the tokenizer gave up
func Extract(doc string) Meta {
	var m Meta
	if strings.TrimSpace(doc) == "" {
		return m
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	inTitle, haveTitle := false, false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return m

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = !haveTitle
			case "meta":
				if m.Generator == "" && attr(tok, "name") == "generator" {
					m.Generator = collapse(attrRaw(tok, "content"))
				}
			case "body":
				// head metadata only, stop once both are found
				if haveTitle && m.Generator != "" {
					return m
				}
			}

		case html.TextToken:
			if inTitle {
				m.Title = truncate(collapse(string(z.Text())), maxTitle)
				haveTitle = true
			}

		case html.EndTagToken:
			if inTitle {
				name, _ := z.TagName()
				if string(name) == "title" {
					inTitle = false
					haveTitle = true
				}
			}
		}
	}
}

// attr returns the lowercased value of key
func attr(t html.Token, key string) string {
	return strings.ToLower(strings.TrimSpace(attrRaw(t, key)))
}

func attrRaw(t html.Token, key string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
