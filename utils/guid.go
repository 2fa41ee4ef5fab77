package utils

import (
	"strings"

	"github.com/google/uuid"
)

// Entity GUID prefixes.
const (
	PrefixCompany              = "CP"
	PrefixTransaction          = "TX"
	PrefixCallbackEvent        = "EV"
	PrefixReconciliationRecord = "RR"
	PrefixPayoutPlan           = "PO"
)

// GUID returns a prefixed identifier, e.g. TX7c9e6679742f4b39a1e3.
func GUID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SecretKey returns an unprefixed random key, used for callback keys and
// idempotency keys.
func SecretKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
}
