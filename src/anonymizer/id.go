package anonymizer

type idStrategy struct {
	gen Generator
}

func (s *idStrategy) clean(raw string) string {
	return raw
}

func (s *idStrategy) produce(norm string, _ map[string]string) (string, *Warning) {
	return s.gen.UUID4(), nil
}
