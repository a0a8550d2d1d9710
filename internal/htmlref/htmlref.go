// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package htmlref finds and rewrites <img> src references in post bodies.
// The body is lexed with the x/net/html tokenizer but never re-serialized:
// rewrites splice new attribute values into the original bytes, so
// everything outside a rewritten src stays byte-identical.
package htmlref

import (
	"errors"
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
)

// imgRef is one <img src> occurrence with the byte span of its value
// inside the source document.
type imgRef struct {
	value      string // decoded src value
	start, end int    // value span, excluding quotes
	quote      byte   // '"', '\'' or 0 when unquoted
}

// scan walks every start or self-closing <img> tag and reports its src.
// Returns ok=false if the tokenizer stops on anything other than EOF.
func scan(doc string) (refs []imgRef, ok bool) {
	z := xhtml.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		// Copy before TagName, which lowercases the buffer in place.
		raw := string(z.Raw())
		tagStart := offset
		offset += len(raw)

		switch tt {
		case xhtml.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return refs, true
			}
			return nil, false

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}
			if ref, found := srcSpan(raw); found {
				ref.start += tagStart
				ref.end += tagStart
				refs = append(refs, ref)
			}
		}
	}
}

// srcSpan finds the src attribute inside a raw tag such as
// `<img class="a" src='x.png'>` and returns the position of its value.
func srcSpan(tag string) (imgRef, bool) {
	i := 1 // skip '<'
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	for i < len(tag) {
		for i < len(tag) && (isSpace(tag[i]) || tag[i] == '/') {
			i++
		}
		if i >= len(tag) || tag[i] == '>' {
			break
		}

		nameStart := i
		for i < len(tag) && !isSpace(tag[i]) && tag[i] != '=' && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		name := strings.ToLower(tag[nameStart:i])

		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			continue // attribute without a value
		}
		i++
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) {
			break
		}

		var ref imgRef
		switch q := tag[i]; q {
		case '"', '\'':
			i++
			ref.start, ref.quote = i, q
			for i < len(tag) && tag[i] != q {
				i++
			}
			ref.end = i
			if i < len(tag) {
				i++
			}
		default:
			ref.start = i
			for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' {
				i++
			}
			ref.end = i
		}

		if name == "src" {
			ref.value = html.UnescapeString(tag[ref.start:ref.end])
			return ref, true
		}
	}
	return imgRef{}, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// ExtractImageReferences returns every <img> src in order of first
// appearance with duplicates and empty values removed. Input that cannot
// be tokenized yields an empty slice.
func ExtractImageReferences(doc string) []string {
	if doc == "" {
		return []string{}
	}
	refs, ok := scan(doc)
	if !ok {
		return []string{}
	}

	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		v := strings.TrimSpace(r.value)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// RewriteImageReferences replaces each <img> src whose value is a key in
// mapping with the mapped value. Only the attribute values change; input
// that cannot be tokenized is returned as-is.
func RewriteImageReferences(doc string, mapping map[string]string) string {
	if doc == "" || len(mapping) == 0 {
		return doc
	}
	refs, ok := scan(doc)
	if !ok {
		return doc
	}

	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	replaced := false
	for _, r := range refs {
		next, hit := mapping[strings.TrimSpace(r.value)]
		if !hit {
			continue
		}
		b.WriteString(doc[last:r.start])
		if r.quote == 0 {
			// An unquoted value cannot safely hold an arbitrary URL.
			b.WriteByte('"')
			b.WriteString(html.EscapeString(next))
			b.WriteByte('"')
		} else {
			b.WriteString(html.EscapeString(next))
		}
		last = r.end
		replaced = true
	}
	if !replaced {
		return doc
	}
	b.WriteString(doc[last:])
	return b.String()
}
