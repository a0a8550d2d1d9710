// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package htmlref

import (
	"net/url"
	"strings"
)

// LocalScheme prefixes every handle minted for a staged file.
const LocalScheme = "local:"

// blobScheme is accepted as local too, for handles minted by a browser.
const blobScheme = "blob:"

// Classifier decides whether a reference points into the remote asset
// store. It is configured with the storage hosts (e.g. res.cloudinary.com
// or the S3 endpoint host) and optional public URL prefixes (a CDN).
type Classifier struct {
	hosts    map[string]bool
	prefixes []string
}

// NewClassifier builds a classifier. Hosts are compared case-insensitively
// without port; prefixes are matched literally after trimming a trailing slash.
func NewClassifier(hosts, prefixes []string) *Classifier {
	c := &Classifier{hosts: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			c.hosts[h] = true
		}
	}
	for _, p := range prefixes {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			c.prefixes = append(c.prefixes, p+"/")
		}
	}
	return c
}

// IsRemote reports whether ref is an http(s) URL served by the asset store.
func (c *Classifier) IsRemote(ref string) bool {
	if c == nil || ref == "" {
		return false
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(ref, p) {
			return true
		}
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return c.hosts[strings.ToLower(u.Hostname())]
}

// IsLocal reports whether ref is a transient handle for a staged file.
func IsLocal(ref string) bool {
	return strings.HasPrefix(ref, LocalScheme) || strings.HasPrefix(ref, blobScheme)
}

// RemoteReferences returns the deduplicated remote image URLs in doc.
func (c *Classifier) RemoteReferences(doc string) []string {
	var out []string
	for _, ref := range ExtractImageReferences(doc) {
		if c.IsRemote(ref) {
			out = append(out, ref)
		}
	}
	return out
}

// LocalReferences returns the set of local handles referenced by doc.
func LocalReferences(doc string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, ref := range ExtractImageReferences(doc) {
		if IsLocal(ref) {
			set[ref] = struct{}{}
		}
	}
	return set
}
