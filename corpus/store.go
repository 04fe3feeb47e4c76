package corpus

// Row is one raw corpus entry before validation: sentence id plus
// language-code -> text. Missing or empty languages are allowed here.
type Row struct {
	ID     string
	Source string
	Texts  map[string]string
}

// Store is the validated sentence-id -> language -> text mapping.
// Every sentence in a Store has non-empty text for every configured language.
// A Store is immutable after construction.
type Store struct {
	languages []string
	ids       []string
	sources   map[string]string
	texts     map[string]map[string]string
	dropped   int
}

// NewStore keeps the rows that have text for every language; the rest are
// counted in Dropped. Row order is preserved and a repeated id keeps the
// first complete occurrence.
func NewStore(languages []string, rows []Row) *Store {
	s := &Store{
		languages: append([]string(nil), languages...),
		ids:       make([]string, 0, len(rows)),
		sources:   make(map[string]string, len(rows)),
		texts:     make(map[string]map[string]string, len(rows)),
	}

	for _, row := range rows {
		if _, dup := s.texts[row.ID]; dup || !complete(row, languages) {
			s.dropped++
			continue
		}
		texts := make(map[string]string, len(languages))
		for _, lang := range languages {
			texts[lang] = row.Texts[lang]
		}
		s.ids = append(s.ids, row.ID)
		s.sources[row.ID] = row.Source
		s.texts[row.ID] = texts
	}

	return s
}

func complete(row Row, languages []string) bool {
	if row.ID == "" {
		return false
	}
	for _, lang := range languages {
		if row.Texts[lang] == "" {
			return false
		}
	}
	return true
}

// Languages returns the configured language codes in order.
func (s *Store) Languages() []string {
	return append([]string(nil), s.languages...)
}

// IDs returns sentence ids in corpus order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Dropped returns how many input rows were rejected as incomplete or duplicate.
func (s *Store) Dropped() int {
	return s.dropped
}

// Len returns the number of sentences.
func (s *Store) Len() int {
	return len(s.ids)
}

// Text returns the text of a sentence in one language.
func (s *Store) Text(id, lang string) (string, bool) {
	texts, ok := s.texts[id]
	if !ok {
		return "", false
	}
	text, ok := texts[lang]
	return text, ok
}

// Source returns the source article title recorded for a sentence, if any.
func (s *Store) Source(id string) string {
	return s.sources[id]
}

// Sentence returns a copy of all texts of a sentence.
func (s *Store) Sentence(id string) (map[string]string, bool) {
	texts, ok := s.texts[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(texts))
	for k, v := range texts {
		out[k] = v
	}
	return out, true
}
