// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package htmlref

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// WordCount counts whitespace-separated words in the visible text of doc.
// Script and style bodies are skipped.
func WordCount(doc string) int {
	z := xhtml.NewTokenizer(strings.NewReader(doc))
	words := 0
	skip := 0
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return words
		case xhtml.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case xhtml.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case xhtml.TextToken:
			if skip == 0 {
				words += len(strings.Fields(xhtml.UnescapeString(string(z.Text()))))
			}
		}
	}
}

func isRawText(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}
