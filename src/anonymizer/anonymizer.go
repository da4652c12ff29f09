// Package anonymizer rewrites sensitive fields in tabular and document data
// with fake but shape-preserving substitutes. The same original value always
// maps to the same substitute within a run, and structural properties the
// data may rely on (email domains, IP subnets, coordinate vicinity) survive
// the rewrite.
package anonymizer

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Kind names a field handler type. Every kind has its own substitution cache,
// so equal values in differently-kinded fields do not leak into each other.
type Kind string

const (
	NAME_KIND       Kind = "name"
	EMAIL_KIND      Kind = "email"
	ID_KIND         Kind = "id"
	HOST_KIND       Kind = "host"
	IP_KIND         Kind = "ip"
	COORDINATE_KIND Kind = "coordinate"
)

// AllKinds lists the kinds in the order handlers are built and applied.
var AllKinds = []Kind{NAME_KIND, EMAIL_KIND, ID_KIND, IP_KIND, COORDINATE_KIND, HOST_KIND}

// strategy is the kind-specific half of a field handler: normalize the
// incoming text, and produce a substitute for a value seen for the first
// time. produce runs under the kind's cache lock and may consult the kind's
// topology map.
type strategy interface {
	clean(raw string) string
	produce(norm string, topo map[string]string) (string, *Warning)
}

func newStrategy(kind Kind, gen Generator, rng *rand.Rand, keepCIDRHostBits bool) strategy {
	switch kind {
	case NAME_KIND:
		return &nameStrategy{gen: gen}
	case EMAIL_KIND:
		return &emailStrategy{gen: gen}
	case ID_KIND:
		return &idStrategy{gen: gen}
	case HOST_KIND:
		return &hostStrategy{gen: gen}
	case IP_KIND:
		return &ipStrategy{gen: gen, keepHostBits: keepCIDRHostBits}
	case COORDINATE_KIND:
		return &coordinateStrategy{rng: rng}
	default:
		panic(fmt.Sprintf("unknown handler kind %q", kind))
	}
}

// FieldHandler applies one field spec: find the value, normalize it, and
// substitute it consistently through the kind's shared cache.
type FieldHandler struct {
	kind     Kind
	spec     *FieldSpec
	cache    *TypeCache
	strategy strategy
}

func (h *FieldHandler) Kind() Kind {
	return h.kind
}

func (h *FieldHandler) Spec() *FieldSpec {
	return h.spec
}

// Anonymize substitutes one value. The result is always usable: on a
// per-value failure it is the input unchanged and the warning says why.
// Nulls and values that normalize to the empty string pass through untouched.
func (h *FieldHandler) Anonymize(raw interface{}) (interface{}, *Warning) {
	if raw == nil {
		return nil, nil
	}
	s, ok := stringifyScalar(raw)
	if !ok {
		return raw, &Warning{
			Kind:      UNSUPPORTED_VALUE_WARNING,
			FieldSpec: h.spec.Raw,
			Detail:    fmt.Sprintf("cannot anonymize value of type %T", raw),
		}
	}
	norm := h.strategy.clean(s)
	if norm == "" {
		return raw, nil
	}
	sub, warning := h.cache.LookupOrProduce(norm, func(topo map[string]string) (string, *Warning) {
		return h.strategy.produce(norm, topo)
	})
	if warning != nil {
		warning.FieldSpec = h.spec.Raw
	}
	return h.render(raw, sub), warning
}

// render casts the cached substitute to the representation of the value at
// hand. Coordinates are the one kind whose fields legitimately arrive as
// JSON numbers and must stay numbers.
func (h *FieldHandler) render(raw interface{}, sub string) interface{} {
	if h.kind != COORDINATE_KIND {
		return sub
	}
	if _, isNumber := raw.(float64); isNumber {
		if f, err := strconv.ParseFloat(sub, 64); err == nil {
			return f
		}
	}
	return sub
}

// stringifyScalar renders the scalar forms a JSON document or a CSV cell can
// carry. Composite values (objects, arrays) are not anonymizable.
func stringifyScalar(v interface{}) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(tv), true
	}
	return "", false
}
