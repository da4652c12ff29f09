package anonymizer

import "strings"

// FALLBACK_EMAIL_DOMAIN is used for values that look like bare mailbox names
// without an @domain part.
const FALLBACK_EMAIL_DOMAIN = "company.com"

type emailStrategy struct {
	gen Generator
}

// Addresses are case-insensitive, so they normalize to lower case before
// hitting the cache.
func (s *emailStrategy) clean(raw string) string {
	return strings.ToLower(raw)
}

// produce preserves domain topology: every address at one original domain
// ends up at the same substitute domain.
func (s *emailStrategy) produce(norm string, domains map[string]string) (string, *Warning) {
	domain := FALLBACK_EMAIL_DOMAIN
	if parts := strings.Split(norm, "@"); len(parts) > 1 {
		mapped, exists := domains[parts[1]]
		if !exists {
			mapped = s.gen.DomainName(1)
			domains[parts[1]] = mapped
		}
		domain = mapped
	}
	return s.gen.Email(domain), nil
}
