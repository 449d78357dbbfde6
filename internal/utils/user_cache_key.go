package utils

import "strings"

// UserCacheKey builds the read-cache key for one user record.
func UserCacheKey(id string) string {
	return "users:v1:id=" + strings.TrimSpace(id)
}
