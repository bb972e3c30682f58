package redis

const (
	// KeyPrefix is shared by every key the library writes.
	KeyPrefix = "library:"
)

// SkipsKey returns the hash holding the last audit's skipped records,
// field = object key, value = CBOR-encoded domain.SkippedKey.
func SkipsKey(namespace string) string {
	return KeyPrefix + namespace + ":skips"
}

// AuditKey returns the key holding the last audit summary.
func AuditKey(namespace string) string {
	return KeyPrefix + namespace + ":audit:last"
}
