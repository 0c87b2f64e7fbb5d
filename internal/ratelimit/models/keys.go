package models

import "strings"

// UnknownClient is the key used when the client address cannot be determined.
// All such requests share one budget.
const UnknownClient = "unknown"

const keyPrefix = "rl"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where user-controlled identifiers containing
// ':' could manipulate adjacent rate limit buckets.
//
// Example: an IPv6 address "::1" becomes "__1".
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// Key builds the window key for a scope and client key. An empty client key
// falls back to UnknownClient.
func Key(scope Scope, clientKey string) string {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = UnknownClient
	}
	return keyPrefix + ":" + SanitizeKeySegment(string(scope)) + ":" + SanitizeKeySegment(clientKey)
}
