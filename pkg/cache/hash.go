package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. The pipeline uses it on the encoded
// resource collections, so identical inputs share a layout entry.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digestKey joins namespace and the SHA-256 of the JSON encoding of parts.
// Parts must be JSON-encodable; struct field order keeps the encoding stable.
func digestKey(namespace string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Only unencodable values (channels, funcs) get here.
		panic("cache: unencodable key part: " + err.Error())
	}
	return namespace + ":" + Hash(data)
}
