// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract finds candidate place names in news text.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/observatorio/geonoticias/gazetteer"
	"github.com/observatorio/geonoticias/utils/textutils"
)

// Signal records why a string was considered a candidate. Signals combine.
type Signal uint8

// Known signals.
const (
	SignalPattern Signal = 1 << iota
	SignalGazetteer
	SignalAI
)

// Has reports whether all the bits of o are set.
func (s Signal) Has(o Signal) bool {
	return s&o == o
}

func (s Signal) String() string {
	var parts []string

	if s.Has(SignalPattern) {
		parts = append(parts, "pattern-matched")
	}

	if s.Has(SignalGazetteer) {
		parts = append(parts, "gazetteer-hit")
	}

	if s.Has(SignalAI) {
		parts = append(parts, "ai-suggested")
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// Candidate is a string that might name a place. It is not verified yet.
type Candidate struct {
	Raw           string `json:"raw"`
	Normalized    string `json:"normalized"`
	Signals       Signal `json:"signals"`
	TitleMention  bool   `json:"title_mention"`
	AIPrimaryHint bool   `json:"ai_primary_hint"`
	// Country is set when the source knows it (gazetteer entry, AI hint).
	Country string `json:"country,omitempty"`
}

// NewHint builds a candidate as supplied by an external source.
func NewHint(raw, country string, primary bool) Candidate {
	raw = strings.Join(strings.Fields(raw), " ")

	return Candidate{
		Raw:           raw,
		Normalized:    textutils.Normalize(raw),
		Signals:       SignalAI,
		AIPrimaryHint: primary,
		Country:       strings.ToLower(strings.TrimSpace(country)),
	}
}

const (
	word      = `\p{Lu}\p{Ll}+`
	connector = `(?:de|del|la|las|los)`
	phrase    = word + `(?:\s+(?:` + connector + `\s+){0,2}` + word + `)*`
	// lowercase on purpose: "en la ciudad de X" but never eat "Ciudad del Este"
	adminUnit = `(?:ciudad|localidad|provincia|municipio|departamento|partido|comuna|región|estado|barrio)`
	lead      = `(?:^|[^\p{L}])`
)

var (
	anchoredPatterns = []*regexp.Regexp{
		// en/desde/hacia/hasta/cerca de [la] [ciudad de] X
		regexp.MustCompile(lead + `(?i:en|desde|hacia|hasta|cerca\s+de)\s+(?:(?:la|el)\s+)?(?:` + adminUnit + `\s+(?:del?\s+)?)?(` + phrase + `)`),
		// provincia/departamento/municipio de X
		regexp.MustCompile(lead + `(?:provincia|departamento|municipio|partido|localidad|comuna)\s+(?:del?\s+)?(` + phrase + `)`),
		// calle/avenida/plaza/parque/barrio X
		regexp.MustCompile(lead + `(?:calle|avenida|plaza|parque|barrio)\s+(` + phrase + `)`),
		// norte/sur/este/oeste de X
		regexp.MustCompile(lead + `(?:norte|sur|este|oeste)\s+del?\s+(` + phrase + `)`),
		// ubicado/situado/localizado en X
		regexp.MustCompile(lead + `(?:ubicad[oa]s?|localizad[oa]s?|situad[oa]s?)\s+(?:en|cerca\s+de)\s+(` + phrase + `)`),
	}

	phrasePattern = regexp.MustCompile(phrase)

	leadingNoise = regexp.MustCompile(
		`^(?i:(?:el|la|los|las|de|del|en|desde|hacia|hasta)\s+|` +
			adminUnit + `\s+(?:del?\s+)?|` +
			`(?:norte|sur|este|oeste)\s+(?:del?\s+)?|` +
			`(?:ubicad[oa]s?|localizad[oa]s?|situad[oa]s?)\s+(?:en\s+|cerca\s+de\s+)?)`)
)

const maxWords = 4

// Extractor turns text into candidates. It is safe for concurrent use.
type Extractor struct {
	gaz      *gazetteer.Gazetteer
	mentions []gazetteer.Mention
	ignore   map[string]bool
}

// New builds an Extractor. A nil gazetteer disables gazetteer hits; extra
// ignore words are added to DefaultIgnoreWords.
func New(gaz *gazetteer.Gazetteer, extraIgnore ...string) *Extractor {
	e := &Extractor{
		gaz:    gaz,
		ignore: make(map[string]bool, len(DefaultIgnoreWords)+len(extraIgnore)),
	}

	for _, w := range append(append([]string(nil), DefaultIgnoreWords...), extraIgnore...) {
		if w = textutils.LowerASCIIFolding(w); w != "" {
			e.ignore[w] = true
		}
	}

	if gaz != nil {
		e.mentions = gaz.Mentions()
	}

	return e
}

// candidateSet keeps insertion order and merges duplicates.
type candidateSet struct {
	order []string
	byKey map[string]*Candidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byKey: make(map[string]*Candidate)}
}

func (s *candidateSet) add(c Candidate) {
	if c.Normalized == "" {
		return
	}

	existing, ok := s.byKey[c.Normalized]
	if !ok {
		s.order = append(s.order, c.Normalized)
		s.byKey[c.Normalized] = &c

		return
	}

	existing.Signals |= c.Signals
	existing.TitleMention = existing.TitleMention || c.TitleMention
	existing.AIPrimaryHint = existing.AIPrimaryHint || c.AIPrimaryHint

	// the gazetteer spelling and country win
	if c.Signals.Has(SignalGazetteer) {
		existing.Raw = c.Raw
		existing.Country = c.Country
	} else if existing.Country == "" {
		existing.Country = c.Country
	}
}

func (s *candidateSet) list() []Candidate {
	ret := make([]Candidate, 0, len(s.order))
	for _, k := range s.order {
		ret = append(ret, *s.byKey[k])
	}

	return ret
}

// Extract returns the deduplicated candidates found in text, merged with the
// externally supplied hints. It never fails: text without names yields nil.
func (e *Extractor) Extract(text string, hints []Candidate) []Candidate {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}

	set := newCandidateSet()

	for _, m := range e.patternMatches(text) {
		set.add(Candidate{Raw: m, Normalized: textutils.Normalize(m), Signals: SignalPattern})
	}

	for _, m := range e.gazetteerMatches(text) {
		set.add(Candidate{
			Raw:        m.Place.Name,
			Normalized: textutils.Normalize(m.Place.Name),
			Signals:    SignalGazetteer,
			Country:    m.Place.Country,
		})
	}

	for _, h := range hints {
		if h.Normalized == "" {
			h.Normalized = textutils.Normalize(h.Raw)
		}

		if utf8.RuneCountInString(h.Normalized) <= 2 {
			continue
		}

		h.Signals |= SignalAI
		set.add(h)
	}

	if len(set.order) == 0 {
		return nil
	}

	return set.list()
}

func (e *Extractor) patternMatches(text string) []string {
	var ret []string

	for _, re := range anchoredPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if c, ok := e.clean(m[1]); ok {
				ret = append(ret, c)
			}
		}
	}

	for _, m := range phrasePattern.FindAllString(text, -1) {
		if len(strings.Fields(m)) < 2 {
			continue
		}

		if c, ok := e.clean(m); ok {
			ret = append(ret, c)
		}
	}

	return ret
}

// clean strips leading articles, prepositions and administrative words and
// then applies the validity filter. Known names keep their article
// ("La Plata", "El Alto").
func (e *Extractor) clean(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), " ")

	for {
		if e.gaz != nil {
			if _, known := e.gaz.Lookup(s); known {
				return s, true
			}
		}

		loc := leadingNoise.FindStringIndex(s)
		if loc == nil || loc[1] >= len(s) {
			break
		}

		s = s[loc[1]:]
	}

	return s, e.valid(s)
}

func (e *Extractor) valid(s string) bool {
	if utf8.RuneCountInString(s) <= 2 {
		return false
	}

	first, _ := utf8.DecodeRuneInString(s)
	if unicode.IsDigit(first) || !unicode.IsUpper(first) {
		return false
	}

	if strings.ToUpper(s) == s {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}

	words := strings.Fields(s)
	if len(words) > maxWords {
		return false
	}

	for _, w := range words {
		w = textutils.LowerASCIIFolding(w)
		if !connectors[w] && e.ignore[w] {
			return false
		}
	}

	return true
}

// gazetteerMatches finds whole-word, case-sensitive, accent-insensitive
// occurrences of gazetteer names. Matched spans are blanked so a shorter
// name inside a longer one ("Santiago" in "Santiago del Estero") is skipped.
func (e *Extractor) gazetteerMatches(text string) []gazetteer.Mention {
	if len(e.mentions) == 0 {
		return nil
	}

	folded := []byte(textutils.FoldAccents(text))

	var ret []gazetteer.Mention

	for _, m := range e.mentions {
		name := []byte(textutils.FoldAccents(m.Name))
		found := false

		for start := 0; start < len(folded); {
			idx := indexFrom(folded, name, start)
			if idx < 0 {
				break
			}

			end := idx + len(name)
			if isBoundary(folded, idx-1, true) && isBoundary(folded, end, false) {
				found = true

				for i := idx; i < end; i++ {
					folded[i] = ' '
				}
			}

			start = end
		}

		if found {
			ret = append(ret, m)
		}
	}

	return ret
}

func indexFrom(haystack, needle []byte, from int) int {
	idx := strings.Index(string(haystack[from:]), string(needle))
	if idx < 0 {
		return -1
	}

	return from + idx
}

// isBoundary reports whether the rune ending at (before=true) or starting at
// pos is not part of a word.
func isBoundary(b []byte, pos int, before bool) bool {
	if pos < 0 || pos >= len(b) {
		return true
	}

	var r rune
	if before {
		r, _ = utf8.DecodeLastRune(b[:pos+1])
	} else {
		r, _ = utf8.DecodeRune(b[pos:])
	}

	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// MarkTitleMentions flags the candidates whose normalized form appears as
// whole words in the title.
func MarkTitleMentions(candidates []Candidate, title string) {
	normTitle := textutils.Normalize(title)
	for i := range candidates {
		if textutils.ContainsPhrase(normTitle, candidates[i].Normalized) {
			candidates[i].TitleMention = true
		}
	}
}
