package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service represents a reply-generation service found on the network
type Service struct {
	// Instance is the advertised instance name (e.g., "office-replies")
	Instance string

	// Hostname is the mDNS hostname (e.g., "replybox.local.")
	Hostname string

	// IP is the service address, IPv4 preferred
	IP string

	// Port is the HTTP port
	Port int

	// Path is the request path from the "path" TXT record, or DefaultPath
	Path string

	// Metadata contains all mDNS TXT record data
	// Common fields: "path=/api/email/response", "version=1.2.0"
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, s.Endpoint())
}

// BaseURL returns the HTTP base URL for the service
func (s *Service) BaseURL() string {
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Endpoint returns the full URL replies are requested from
func (s *Service) Endpoint() string {
	return s.BaseURL() + s.Path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
