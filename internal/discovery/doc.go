// Package discovery finds reply-generation services on the local network
// over multicast DNS.
//
// Services advertise themselves as "_emailreply._tcp" in the "local."
// domain. A "path" TXT record names the request path when it differs from
// /api/email/response.
//
// # Usage Example
//
//	svc, err := discovery.FindFirst(ctx, 3*time.Second)
//	if errors.Is(err, discovery.ErrNoService) {
//	    // fall back to the configured endpoint
//	}
//	client := replyapi.NewClient(svc.BaseURL())
//	client.SetPath(svc.Path)
//
// Advertise is the publishing side, used by the stub server.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Services must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
