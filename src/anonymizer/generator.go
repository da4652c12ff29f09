package anonymizer

// Generator supplies the fake values substituted into fields. One seeded
// generator is shared by every handler of a run; implementations must be safe
// for concurrent use.
type Generator interface {
	// Name returns a person name.
	Name() string
	// Email returns a mailbox at the given domain.
	Email(domain string) string
	// DomainName returns a domain with the given number of word labels
	// (levels+1 labels in total, counting the suffix).
	DomainName(levels int) string
	// Hostname returns a bare, single-label machine name.
	Hostname() string
	// UUID4 returns a random version-4 UUID string.
	UUID4() string
	// PublicIPv4 returns a routable IPv4 address outside the private,
	// loopback, link-local and multicast ranges.
	PublicIPv4() string
	// PublicIPv6 is the v6 counterpart of PublicIPv4.
	PublicIPv6() string
}
