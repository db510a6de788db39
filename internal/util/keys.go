package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageKey isolates a caller key by namespace. An empty namespace leaves
// the key untouched so entries stay readable by other clients of the store.
func StorageKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}

// RedactKey returns a short stable digest of a storage key for logs and
// metrics labels, where raw keys may carry user data.
func RedactKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
