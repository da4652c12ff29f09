//go:build unit

package anonymizer

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIPHandler(t *testing.T, keepHostBits bool) *FieldHandler {
	t.Helper()
	engine := newTestEngine(t, &Config{
		IPFields:         []string{"addr"},
		KeepCIDRHostBits: keepHostBits,
	})
	return handlerOf(t, engine, IP_KIND)
}

func v4Network(t *testing.T, addr string) string {
	t.Helper()
	i := strings.LastIndexByte(addr, '.')
	require.Greater(t, i, 0, "not a dotted address: %q", addr)
	return addr[:i]
}

func v4HostOctet(t *testing.T, addr string) string {
	t.Helper()
	return addr[strings.LastIndexByte(addr, '.')+1:]
}

func TestIPv4KeepsSubnetRelationships(t *testing.T) {
	h := newIPHandler(t, false)

	a, warning := anonymizeString(t, h, "10.1.2.3")
	require.Nil(t, warning)
	b, _ := anonymizeString(t, h, "10.1.2.77")
	c, _ := anonymizeString(t, h, "10.9.9.9")
	t.Logf("\nIN : 10.1.2.3, 10.1.2.77, 10.9.9.9\nOUT: %s, %s, %s", a, b, c)

	assert.NotEqual(t, "10.1.2.3", a)
	require.True(t, netip.MustParseAddr(a).Is4())

	// Same /24 in, same substitute network out; the host octet is carried over.
	assert.Equal(t, v4Network(t, a), v4Network(t, b))
	assert.Equal(t, "3", v4HostOctet(t, a))
	assert.Equal(t, "77", v4HostOctet(t, b))
	assert.NotEqual(t, v4Network(t, a), v4Network(t, c))
}

func TestIPv4PortIsStripped(t *testing.T) {
	h := newIPHandler(t, false)

	bare, _ := anonymizeString(t, h, "10.1.2.3")
	withPort, warning := anonymizeString(t, h, "10.1.2.3:443")
	require.Nil(t, warning)
	assert.Equal(t, bare, withPort)
	assert.Equal(t, 1, h.cache.Size())
}

func TestIPv6KeepsPrefixRelationships(t *testing.T) {
	h := newIPHandler(t, false)

	a, warning := anonymizeString(t, h, "2001:db8::1")
	require.Nil(t, warning)
	b, _ := anonymizeString(t, h, "2001:db8::2")
	t.Logf("\nIN : 2001:db8::1, 2001:db8::2\nOUT: %s\n     %s", a, b)

	groupsA := strings.Split(a, ":")
	groupsB := strings.Split(b, ":")
	require.Len(t, groupsA, 8, "expected expanded form, got %q", a)
	require.Len(t, groupsB, 8)

	// Same /64 in, same substitute prefix out; the interface part survives.
	assert.Equal(t, groupsA[:4], groupsB[:4])
	assert.Equal(t, "0001", groupsA[7])
	assert.Equal(t, "0002", groupsB[7])
	assert.NotEqual(t, "2001:db8::1", a)
}

func TestIPv6ZoneAndBracketsAreStripped(t *testing.T) {
	h := newIPHandler(t, false)

	bare, _ := anonymizeString(t, h, "fe80::1")
	decorated, warning := anonymizeString(t, h, "[fe80::1%eth0]")
	require.Nil(t, warning)
	assert.Equal(t, bare, decorated)
	assert.Equal(t, 1, h.cache.Size())
}

func TestIPv4CIDRMasksHostBitsByDefault(t *testing.T) {
	h := newIPHandler(t, false)

	out, warning := anonymizeString(t, h, "10.1.2.3/24")
	require.Nil(t, warning)
	t.Logf("\nIN : %s\nOUT: %s", "10.1.2.3/24", out)

	prefix, err := netip.ParsePrefix(out)
	require.NoError(t, err)
	assert.Equal(t, 24, prefix.Bits())
	assert.True(t, strings.HasSuffix(out, ".0/24"), "got %q", out)
}

func TestIPv4CIDRCanKeepHostBits(t *testing.T) {
	h := newIPHandler(t, true)

	out, warning := anonymizeString(t, h, "10.1.2.3/24")
	require.Nil(t, warning)
	t.Logf("\nIN : %s\nOUT: %s", "10.1.2.3/24", out)
	assert.True(t, strings.HasSuffix(out, ".3/24"), "got %q", out)
}

func TestIPv6CIDRMasksHostBitsByDefault(t *testing.T) {
	h := newIPHandler(t, false)

	out, warning := anonymizeString(t, h, "2001:db8:aaaa:bbbb::1/64")
	require.Nil(t, warning)
	t.Logf("\nIN : %s\nOUT: %s", "2001:db8:aaaa:bbbb::1/64", out)

	prefix, err := netip.ParsePrefix(out)
	require.NoError(t, err)
	assert.Equal(t, 64, prefix.Bits())
	assert.True(t, prefix.Masked() == prefix, "host bits survived masking: %q", out)
	assert.NotEqual(t, "2001:db8:aaaa:bbbb::1/64", out)
}

func TestIPv6CIDRCanKeepHostBits(t *testing.T) {
	h := newIPHandler(t, true)

	out, warning := anonymizeString(t, h, "2001:db8:aaaa:bbbb::1:2/64")
	require.Nil(t, warning)
	assert.True(t, strings.HasSuffix(out, ":1:2/64"), "got %q", out)
}

func TestBadAddressesWarnOncePerValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not an address", "not-an-ip"},
		{"mask exceeds family width", "1.2.3.4/99"},
		{"three octets only", "10.0.0/24"},
		{"trailing garbage", "10.1.2.3x"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := newIPHandler(t, false)

			out, warning := anonymizeString(t, h, tc.in)
			require.NotNil(t, warning)
			t.Logf("\nIN : %s\nOUT: %s (%s)", tc.in, out, warning)
			assert.Equal(t, BAD_IP_WARNING, warning.Kind)
			assert.Equal(t, tc.in, out)

			out, warning = anonymizeString(t, h, tc.in)
			assert.Nil(t, warning)
			assert.Equal(t, tc.in, out)
		})
	}
}

func TestIPv4MappedFormsOfIPv6(t *testing.T) {
	h := newIPHandler(t, false)

	// The dotted mapped form has three dots, so it is cleaned like a ported
	// v4 address and normalizes to the empty string: it passes through.
	out, warning := anonymizeString(t, h, "::ffff:1.2.3.4")
	assert.Nil(t, warning)
	assert.Equal(t, "::ffff:1.2.3.4", out)

	// The hex mapped form has no dots and substitutes like any v6 address.
	out, warning = anonymizeString(t, h, "::ffff:102:304")
	require.Nil(t, warning)
	assert.NotEqual(t, "::ffff:102:304", out)
	require.Len(t, strings.Split(out, ":"), 8)
}
