// Package fake produces the replacement values substituted into data files.
// All generation flows from one seed so runs can be reproduced exactly.
package fake

import (
	"fmt"
	"math/rand"
	randv2 "math/rand/v2"
	"net/netip"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

type Generator struct {
	faker *gofakeit.Faker

	// uuid generation reads from its own seeded stream, serialized separately
	// from the faker's internal locking.
	uuidMu   sync.Mutex
	uuidRand *rand.Rand
}

func NewGenerator(seed uint64) *Generator {
	return &Generator{
		faker:    gofakeit.NewFaker(randv2.NewPCG(seed, seed), true),
		uuidRand: rand.New(rand.NewSource(int64(seed))),
	}
}

func (g *Generator) Name() string {
	return g.faker.Name()
}

// Email composes a mailbox at the given domain. The domain decides topology,
// only the local part is invented here.
func (g *Generator) Email(domain string) string {
	return strings.ToLower(g.faker.Username()) + "@" + domain
}

// DomainName returns a registrable domain with the given number of word
// labels, so levels+1 labels in total.
func (g *Generator) DomainName(levels int) string {
	parts := make([]string, 0, levels+1)
	for i := 0; i < levels; i++ {
		parts = append(parts, strings.ToLower(g.faker.Word()))
	}
	parts = append(parts, g.faker.DomainSuffix())
	return strings.Join(parts, ".")
}

// Hostname returns a single-label machine name.
func (g *Generator) Hostname() string {
	return fmt.Sprintf("%s-%02d", strings.ToLower(g.faker.Word()), g.faker.Number(1, 99))
}

func (g *Generator) UUID4() string {
	g.uuidMu.Lock()
	defer g.uuidMu.Unlock()
	u, _ := uuid.NewRandomFromReader(g.uuidRand)
	return u.String()
}

// PublicIPv4 rolls addresses until one falls outside the private, loopback,
// link-local and multicast ranges.
func (g *Generator) PublicIPv4() string {
	for {
		s := g.faker.IPv4Address()
		a, err := netip.ParseAddr(s)
		if err != nil {
			continue
		}
		if a.IsGlobalUnicast() && !a.IsPrivate() {
			return s
		}
	}
}

// PublicIPv6 is the v6 counterpart of PublicIPv4.
func (g *Generator) PublicIPv6() string {
	for {
		s := g.faker.IPv6Address()
		a, err := netip.ParseAddr(s)
		if err != nil {
			continue
		}
		if a.IsGlobalUnicast() && !a.IsPrivate() {
			return s
		}
	}
}
