package util

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateETag returns the hex SHA-1 of content. []byte and string are
// hashed as-is; anything else is hashed by its JSON encoding, or by its %v
// form when it cannot be encoded.
func GenerateETag(content any) string {
	var data []byte
	var err error

	switch v := content.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		data, err = json.Marshal(content)
		if err != nil {
			data = fmt.Appendf(nil, "%v", content)
		}
	}

	hash := sha1.Sum(data)
	return hex.EncodeToString(hash[:])
}

// StrongETag returns the quoted header form of GenerateETag.
func StrongETag(content any) string {
	return `"` + GenerateETag(content) + `"`
}

// ETagMatches reports whether an If-None-Match header value matches etag.
// Weak validators and comma-separated lists are accepted.
func ETagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
