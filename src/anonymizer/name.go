package anonymizer

type nameStrategy struct {
	gen Generator
}

func (s *nameStrategy) clean(raw string) string {
	return raw
}

func (s *nameStrategy) produce(norm string, _ map[string]string) (string, *Warning) {
	return s.gen.Name(), nil
}
