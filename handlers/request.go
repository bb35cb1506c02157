// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/danielhkuo/classroom-vote/middleware"
)

var errEmptyBody = errors.New("request body is empty")

// isJSON reports whether the request carries a JSON body. Everything else is
// read as a form post, which is what the classroom pages submit.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// decodeJSON parses the body into v. An empty body yields errEmptyBody.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	err := middleware.ParseJSONBody(r, v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// formValues returns every value posted for key, also accepting the
// key[] spelling used by jQuery-style serializers.
func formValues(r *http.Request, key string) []string {
	values := append([]string{}, r.PostForm[key]...)
	values = append(values, r.PostForm[key+"[]"]...)
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
