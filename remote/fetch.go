package remote

import (
	"context"
	"encoding/json"
)

// GetWithDefault fetches url and decodes the response into T, returning defaultValue on any
// transport or decoding failure. A string result receives the raw body as text, a []byte result
// receives the raw body, and any other type is decoded from JSON.
func GetWithDefault[T any](ctx context.Context, getter Getter, url string, defaultValue T) T {
	data, err := getter.Get(ctx, url)
	if err != nil {
		return defaultValue
	}

	var result T
	switch v := any(&result).(type) {
	case *string:
		*v = string(data)
	case *[]byte:
		*v = data
	default:
		if err := json.Unmarshal(data, &result); err != nil {
			return defaultValue
		}
	}

	return result
}

// List fetches a directory listing, i.e. a JSON array of child references. Failures and malformed
// bodies yield an empty listing.
func List(ctx context.Context, getter Getter, url string) []string {
	entries := GetWithDefault(ctx, getter, url, []string{})
	if entries == nil {
		return []string{}
	}
	return entries
}

// Text fetches url as text, or returns defaultValue on failure.
func Text(ctx context.Context, getter Getter, url, defaultValue string) string {
	return GetWithDefault(ctx, getter, url, defaultValue)
}

// Bytes fetches url as raw bytes, or returns defaultValue on failure.
func Bytes(ctx context.Context, getter Getter, url string, defaultValue []byte) []byte {
	return GetWithDefault(ctx, getter, url, defaultValue)
}
