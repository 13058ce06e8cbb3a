package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"
)

// randomSuffix returns n uppercase base32 characters from crypto/rand.
func randomSuffix(n int) (string, error) {
	randomBytes := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	s = strings.ToUpper(s)
	if len(s) < n {
		s = s + strings.Repeat("0", n-len(s))
	}
	return s[:n], nil
}

// GenerateResellerID generates a unique reseller code.
// Format: RSL-{RANDOM} where RANDOM is 6 alphanumeric characters.
// Example: RSL-F2FA9D
func GenerateResellerID() (string, error) {
	suffix, err := randomSuffix(6)
	if err != nil {
		return "", err
	}
	return "RSL-" + suffix, nil
}

// GeneratePaymentID generates a payment identifier: prefix, millisecond
// timestamp, then a random suffix. The timestamp keeps ids roughly sortable;
// the suffix makes collisions negligible at expected volume. Uniqueness is
// ultimately enforced by the payments.transactionId index, not this id.
func GeneratePaymentID() (string, error) {
	suffix, err := randomSuffix(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY_%d_%s", time.Now().UnixMilli(), suffix), nil
}

// GeneratePlaceholderProductID generates a synthetic product reference for
// backfilled payments whose source transaction predates the productId field.
func GeneratePlaceholderProductID() (string, error) {
	suffix, err := randomSuffix(8)
	if err != nil {
		return "", err
	}
	return "LEGACY-" + suffix, nil
}
