// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compress returns a middleware that gzips responses of at least minSize
// bytes when the client accepts it. gzhttp's default content-type filter
// leaves already-compressed image payloads alone.
func Compress(minSize int) (func(http.Handler) http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("gzip wrapper: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
