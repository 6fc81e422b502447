package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// maxBodyBytes bounds request bodies on the token endpoints. Credentials and
// token values are tiny; anything larger is junk.
const maxBodyBytes = 1 << 16

// DecodeParams extracts a flat parameter set from either an
// application/x-www-form-urlencoded or application/json request body.
// JSON bodies must be a single object of string (or number/bool) values.
func DecodeParams(r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid json body: %w", err)
		}

		values := make(url.Values, len(raw))
		for k, v := range raw {
			switch t := v.(type) {
			case string:
				values.Set(k, t)
			case float64:
				values.Set(k, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), "."))
			case bool:
				values.Set(k, fmt.Sprintf("%t", t))
			default:
				return nil, fmt.Errorf("parameter %q has unsupported type", k)
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	return r.Form, nil
}
