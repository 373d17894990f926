// Package security validates user-supplied locations before colortune
// reads from them.
package security

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strings"
)

// ValidateImageURL checks that rawURL is an absolute http(s) URL with a
// host. Unless allowPrivate is set, loopback, private and link-local
// addresses are rejected so a shared installation cannot be pointed at
// internal services.
func ValidateImageURL(rawURL string, allowPrivate bool) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("only http and https URLs are allowed (got %q)", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	if !allowPrivate && IsPrivateHost(parsed.Hostname()) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", parsed.Hostname())
	}
	return nil
}

// IsPrivateHost reports whether host is localhost or a literal loopback,
// private, link-local or unspecified address. Other names are not resolved.
func IsPrivateHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified()
}

// ValidateExecutable checks that path names an executable regular file.
func ValidateExecutable(path string) error {
	if path == "" {
		return fmt.Errorf("empty executable path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("executable not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("file is not executable: %s", path)
	}
	return nil
}
