package anonymizer

import "strings"

type hostStrategy struct {
	gen Generator
}

func (s *hostStrategy) clean(raw string) string {
	return raw
}

// produce preserves the label count: bare machine names stay bare, dotted
// names get a substitute with as many labels.
func (s *hostStrategy) produce(norm string, _ map[string]string) (string, *Warning) {
	labels := strings.Count(norm, ".") + 1
	if labels == 1 {
		return s.gen.Hostname(), nil
	}
	return s.gen.DomainName(labels - 1), nil
}
