package pkg

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// docker bridge gateways are 172.<n>.0.1
var dockerBridges = netip.MustParsePrefix("172.16.0.0/12")

// parseAddr accepts a bare ip or ip:port.
func parseAddr(addr string) (netip.Addr, error) {
	if addrPort, err := netip.ParseAddrPort(addr); err == nil {
		return addrPort.Addr(), nil
	}
	return netip.ParseAddr(addr)
}

func isDockerGateway(ip netip.Addr) bool {
	if !ip.Is4() || !dockerBridges.Contains(ip) {
		return false
	}
	octets := ip.As4()
	return octets[2] == 0 && octets[3] == 1
}

// IPIsLocal reports whether addr (ip or ip:port) is the local loopback host or a docker gateway.
func IPIsLocal(addr string) bool {
	ip, err := parseAddr(addr)
	if err != nil {
		return false
	}
	return ip == netip.AddrFrom4([4]byte{127, 0, 0, 1}) || isDockerGateway(ip)
}

// clientAddr picks the client address: X-Real-Ip as set by nginx, then the first
// X-Forwarded-For entry, then the connection's remote address.
func clientAddr(r *http.Request) string {
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}

// ReadUserIP returns the client IP. Local and docker-internal addresses are reported as "localhost".
func ReadUserIP(r *http.Request) (string, error) {
	addr := clientAddr(r)
	ip, err := parseAddr(addr)
	if err != nil {
		return "", fmt.Errorf("ip addr %s is invalid", addr)
	}

	if IPIsLocal(addr) {
		return "localhost", nil
	}
	return ip.String(), nil
}
