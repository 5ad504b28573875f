package client

import "strings"

// Route groups the guards distinguish between
const (
	LoginPath     = "/login"
	LogoutPath    = "/logout"
	DashboardPath = "/dashboard"
)

// protectedPrefixes are the route prefixes that require authentication
var protectedPrefixes = []string{
	"/asset",
	"/category",
	"/dashboard",
	"/location",
	"/qr-scanner",
	"/report",
	"/user",
	"/audit",
}

// IsAuthPath reports whether the path belongs to the auth page group
func IsAuthPath(path string) bool {
	return path == LoginPath || path == LogoutPath
}

// IsProtectedPath reports whether the path requires authentication
func IsProtectedPath(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// SafeRedirectTarget validates a post-login redirect target. Only
// same-site absolute paths are accepted; anything else falls back to
// the dashboard so the login flow cannot be used as an open redirect.
func SafeRedirectTarget(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return DashboardPath
	}
	if strings.ContainsAny(target, "\\\r\n") {
		return DashboardPath
	}
	return target
}
