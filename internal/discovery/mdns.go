package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/logging"
)

const (
	// ServiceType is the mDNS service type advertised by reply services
	ServiceType = "_emailreply._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for service discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is used when an advertisement carries no port
	DefaultPort = 8080

	// DefaultPath is used when an advertisement has no "path" TXT record
	DefaultPath = "/api/email/response"
)

// ErrNoService is returned by FindFirst when nothing answers in time
var ErrNoService = errors.New("no reply service found")

// browser is the part of zeroconf.Resolver the scanner needs
type browser interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// Scanner handles mDNS service discovery
type Scanner struct {
	// Timeout is the maximum time to wait for services
	Timeout time.Duration

	newBrowser func() (browser, error)
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		newBrowser: func() (browser, error) {
			return zeroconf.NewResolver(nil)
		},
	}
}

// Scan discovers all reply services on the local network. It blocks for
// the scanner timeout unless ctx ends first, and returns the services
// sorted by instance name.
func (s *Scanner) Scan(ctx context.Context) ([]*Service, error) {
	services := make(map[string]*Service)

	err := s.browse(ctx, func(svc *Service) bool {
		if _, seen := services[svc.Instance]; !seen {
			services[svc.Instance] = svc
			logging.Debug("Discovered reply service",
				zap.String("instance", svc.Instance),
				zap.String("endpoint", svc.Endpoint()),
			)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	result := make([]*Service, 0, len(services))
	for _, svc := range services {
		result = append(result, svc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Instance < result[j].Instance })
	return result, nil
}

// FindFirst returns the first reply service that answers, or ErrNoService
// when none does before the scanner timeout.
func (s *Scanner) FindFirst(ctx context.Context) (*Service, error) {
	var found *Service

	err := s.browse(ctx, func(svc *Service) bool {
		found = svc
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w within %s", ErrNoService, s.Timeout)
	}
	return found, nil
}

// browse runs one mDNS browse, passing each usable entry to visit until
// visit returns false, the timeout expires or ctx ends. Entries are
// consumed on a single goroutine that has exited by the time browse
// returns.
func (s *Scanner) browse(ctx context.Context, visit func(*Service) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := s.newBrowser()
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := parseServiceEntry(entry)
				if svc == nil {
					continue
				}
				if !visit(svc) {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		cancel()
		<-done
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Service.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}

	path := metadata["path"]
	if path == "" {
		path = DefaultPath
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	instance := entry.Instance
	if instance == "" {
		instance = strings.TrimSuffix(entry.HostName, ".")
	}

	return &Service{
		Instance:     instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         path,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for services with a custom timeout
func Scan(ctx context.Context, timeout time.Duration) ([]*Service, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(ctx)
}

// FindFirst is a convenience function to find one service with a custom timeout
func FindFirst(ctx context.Context, timeout time.Duration) (*Service, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.FindFirst(ctx)
}
