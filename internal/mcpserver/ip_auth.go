package mcpserver

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
)

// IPAuthMiddleware provides IP-based access control for the HTTP transport.
type IPAuthMiddleware struct {
	allowedIPs    []string
	allowedNets   []*net.IPNet
	enableLogging bool
}

// NewIPAuthMiddleware creates a middleware that rejects requests from
// addresses outside the allowed list. Entries may be individual IPs or
// CIDR blocks.
func NewIPAuthMiddleware(allowedIPs []string, enableLogging bool) (*IPAuthMiddleware, error) {
	if len(allowedIPs) == 0 {
		return nil, fmt.Errorf("no allowed IPs specified")
	}

	middleware := &IPAuthMiddleware{
		allowedIPs:    allowedIPs,
		allowedNets:   make([]*net.IPNet, 0),
		enableLogging: enableLogging,
	}

	for _, ipStr := range allowedIPs {
		ipStr = strings.TrimSpace(ipStr)
		if ipStr == "" {
			continue
		}

		if strings.Contains(ipStr, "/") {
			_, network, err := net.ParseCIDR(ipStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR block %s: %v", ipStr, err)
			}
			middleware.allowedNets = append(middleware.allowedNets, network)
			continue
		}

		ip := net.ParseIP(ipStr)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", ipStr)
		}

		var cidr string
		if ip.To4() != nil {
			cidr = ipStr + "/32"
		} else {
			cidr = ipStr + "/128"
		}

		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("failed to create CIDR for IP %s: %v", ipStr, err)
		}
		middleware.allowedNets = append(middleware.allowedNets, network)
	}

	if middleware.enableLogging {
		log.Printf("IP Auth Middleware initialized with %d allowed IP ranges", len(middleware.allowedNets))
	}

	return middleware, nil
}

// Middleware returns the HTTP middleware function.
func (m *IPAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIPFromRequest(r)

		if !m.isIPAllowed(clientIP) {
			if m.enableLogging {
				log.Printf("Access denied for IP: %s (Path: %s, Method: %s)",
					clientIP, r.URL.Path, r.Method)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			if _, err := w.Write([]byte(`{"error": {"code": -32603, "message": "Access denied: IP not authorized"}}`)); err != nil {
				log.Printf("Failed to write error response: %v", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, use the first one.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			clientIP := strings.TrimSpace(ips[0])
			if clientIP != "" {
				return clientIP
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (m *IPAuthMiddleware) isIPAllowed(ipStr string) bool {
	if ipStr == "" {
		return false
	}

	clientIP := net.ParseIP(ipStr)
	if clientIP == nil {
		if m.enableLogging {
			log.Printf("Failed to parse client IP: %s", ipStr)
		}
		return false
	}

	for _, network := range m.allowedNets {
		if network.Contains(clientIP) {
			return true
		}
	}

	return false
}

// IsIPAllowed reports whether the given address passes the allowlist.
func (m *IPAuthMiddleware) IsIPAllowed(ipStr string) bool {
	return m.isIPAllowed(ipStr)
}
