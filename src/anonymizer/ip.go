package anonymizer

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ipStrategy substitutes addresses while preserving subnet relationships:
// the /24 network of an IPv4 address and the /64 prefix of an IPv6 address
// map consistently through the networks topology map, the host part is
// carried over verbatim. v4 and v6 keys never collide in the shared map, one
// family is dotted and the other coloned.
type ipStrategy struct {
	gen          Generator
	keepHostBits bool
}

// clean strips the decorations addresses arrive with: ports on v4
// ("10.0.0.5:443"), zone and brackets on v6 ("[fe80::1%eth0]").
func (s *ipStrategy) clean(raw string) string {
	if strings.Count(raw, ".") == 3 {
		return strings.Split(raw, ":")[0]
	}
	raw = strings.Split(raw, "%")[0]
	raw = strings.Split(raw, "]")[0]
	return strings.TrimPrefix(raw, "[")
}

// The address family is decided by the dot count, exactly three means v4.
func (s *ipStrategy) produce(norm string, networks map[string]string) (string, *Warning) {
	if strings.Count(norm, ".") == 3 {
		return s.produceV4(norm, networks)
	}
	return s.produceV6(norm, networks)
}

// splitCIDR splits "host/mask" when the text after the first slash parses as
// an integer within [0, maxBits]. Anything else, slash included, counts as a
// plain host address.
func splitCIDR(norm string, maxBits int) (host string, mask string, isCIDR bool) {
	host, mask, found := strings.Cut(norm, "/")
	if !found {
		return norm, "", false
	}
	bits, err := strconv.Atoi(mask)
	if err != nil || bits < 0 || bits > maxBits {
		return norm, "", false
	}
	return host, mask, true
}

func (s *ipStrategy) produceV4(norm string, networks map[string]string) (string, *Warning) {
	host, mask, isCIDR := splitCIDR(norm, 32)
	addr, err := netip.ParseAddr(host)
	if err != nil || !addr.Is4() {
		return norm, &Warning{
			Kind:   BAD_IP_WARNING,
			Detail: fmt.Sprintf("cannot parse IPv4 address %q", norm),
		}
	}
	sub := s.substitute(addr.String(), networks, '.', 3, func() string {
		return s.gen.PublicIPv4()
	})
	if isCIDR {
		return s.formatCIDR(sub, mask), nil
	}
	return sub, nil
}

func (s *ipStrategy) produceV6(norm string, networks map[string]string) (string, *Warning) {
	host, mask, isCIDR := splitCIDR(norm, 128)
	addr, err := netip.ParseAddr(host)
	if err != nil || !addr.Is6() {
		return norm, &Warning{
			Kind:   BAD_IP_WARNING,
			Detail: fmt.Sprintf("cannot parse IPv6 address %q", norm),
		}
	}
	sub := s.substitute(addr.StringExpanded(), networks, ':', 4, func() string {
		return netip.MustParseAddr(s.gen.PublicIPv6()).StringExpanded()
	})
	if isCIDR {
		return s.formatCIDR(sub, mask), nil
	}
	return sub, nil
}

// substitute splits the canonical address text at the nth separator, swaps
// the network part for a consistent fake one and keeps the rest.
func (s *ipStrategy) substitute(text string, networks map[string]string, sep byte, n int, genAddr func() string) string {
	cut := nthIndexByte(text, sep, n)
	network, suffix := text[:cut], text[cut:]
	mapped, exists := networks[network]
	if !exists {
		fresh := genAddr()
		mapped = fresh[:nthIndexByte(fresh, sep, n)]
		networks[network] = mapped
	}
	return mapped + suffix
}

// formatCIDR reattaches the mask. The default form is the masked network,
// the way CIDR blocks are usually written; keepHostBits preserves the
// substituted host part instead.
func (s *ipStrategy) formatCIDR(sub string, mask string) string {
	bits, _ := strconv.Atoi(mask)
	prefix := netip.PrefixFrom(netip.MustParseAddr(sub), bits)
	if s.keepHostBits {
		return prefix.String()
	}
	return prefix.Masked().String()
}

// nthIndexByte returns the index of the nth occurrence of c in s, -1 when
// there are fewer.
func nthIndexByte(s string, c byte, n int) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			n--
			if n == 0 {
				return i
			}
		}
	}
	return -1
}
