package asmutable

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/minio/blake2b-simd"
)

// Digest returns the base64url BLAKE2b-256 hash of the JSON encoding of v,
// after materializing it if it is a Facade. Two values have the same
// digest exactly when they encode the same, regardless of reference
// identity; members are encoded in own-key order, so order matters.
func Digest(v interface{}) (string, error) {
	plain, err := Unwrap(v)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:]), nil
}
