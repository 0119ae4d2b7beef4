// internal/words/words.go
//
// Provides word list management for the game engine.
//
// Responsibilities:
//   - Load the per-language word+hint lists from a directory (WORDS_DIR)
//     or fall back to the lists embedded in the assets package.
//   - Skip words holding anything the player cannot type (spaces, hyphens,
//     letters missing from the on-screen alphabet).
//   - Replace any list that fails to load (or is empty) with a built-in
//     two-entry list, so a round can always start.
//   - Supply RandomEntry, Alphabet and Stats helpers.
//
// File format (words-<lang>.json):
//   {"words": [{"word": "computer", "hint": "Electronic device"}, ...]}

package words

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/assets"
)

// DefaultLang is used when a request does not name a language.
const DefaultLang = "en"

// ErrUnknownLang is returned for languages without a word list.
var ErrUnknownLang = errors.New("unknown language")

// Entry is a word to guess and its hint.
type Entry struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

type listFile struct {
	Words []Entry `json:"words"`
}

var languages = []string{"en", "ar"}

var fallback = map[string][]Entry{
	"en": {
		{Word: "programming", Hint: "Writing code"},
		{Word: "computer", Hint: "Electronic device"},
	},
	"ar": {
		{Word: "برمجة", Hint: "فن كتابة الأكواد"},
		{Word: "حاسوب", Hint: "جهاز إلكتروني"},
	},
}

// alphabets are the letters a player can type, so every word must be
// spelled from them. Arabic adds taa marbuta, alef maqsura and the hamza
// forms to the 28 base letters.
var alphabets = map[string]string{
	"en": "abcdefghijklmnopqrstuvwxyz",
	"ar": "ابجدهوزحطيكلمنسعفصقرشتثخذضظغ" + "ةىءأإآؤئ",
}

// Source holds the loaded word lists, keyed by language.
type Source struct {
	lists map[string][]Entry
}

// Load reads every language list. With dir empty the embedded lists are
// used. Lists that cannot be read fall back to the built-in entries; the
// failure is logged and never returned.
func Load(dir string) *Source {
	s := &Source{lists: make(map[string][]Entry, len(languages))}
	for _, lang := range languages {
		list, err := readList(dir, lang)
		if err == nil && len(list) == 0 {
			err = errors.New("empty word list")
		}
		if err != nil {
			log.Warn().Err(err).Str("lang", lang).Str("dir", dir).Msg("using fallback words")
			list = append([]Entry(nil), fallback[lang]...)
		}
		s.lists[lang] = list
	}
	return s
}

// FromEntries builds a Source from in-memory lists.
func FromEntries(lists map[string][]Entry) *Source {
	s := &Source{lists: make(map[string][]Entry, len(lists))}
	for lang, list := range lists {
		s.lists[lang] = normalize(lang, list)
	}
	return s
}

func readList(dir, lang string) ([]Entry, error) {
	var raw []byte
	var err error
	if dir == "" {
		raw, err = assets.WordList(lang)
	} else {
		raw, err = os.ReadFile(filepath.Join(dir, "words-"+lang+".json"))
	}
	if err != nil {
		return nil, err
	}
	var f listFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse words-%s.json: %w", lang, err)
	}
	return normalize(lang, f.Words), nil
}

// normalize lowercases words and drops blank entries and words that cannot
// be typed from the language's alphabet.
func normalize(lang string, in []Entry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		w := strings.ToLower(strings.TrimSpace(e.Word))
		if w == "" {
			continue
		}
		if r, ok := untypeable(lang, w); ok {
			log.Warn().Str("lang", lang).Str("word", w).Str("rune", string(r)).Msg("skipping word with untypeable letter")
			continue
		}
		out = append(out, Entry{Word: w, Hint: strings.TrimSpace(e.Hint)})
	}
	return out
}

// untypeable returns the first rune of w that is not a letter, or not in
// the alphabet of lang when it has one.
func untypeable(lang, w string) (rune, bool) {
	letters, known := alphabets[lang]
	for _, r := range w {
		if !unicode.IsLetter(r) || known && !strings.ContainsRune(letters, r) {
			return r, true
		}
	}
	return 0, false
}

// Random returns a cryptographically random entry for lang.
func (s *Source) Random(lang string) (Entry, error) {
	list := s.lists[lang]
	if len(list) == 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownLang, lang)
	}
	return s.At(lang, randomIndex(len(list)))
}

// At returns entry i (modulo the list length) for lang.
func (s *Source) At(lang string, i int) (Entry, error) {
	list := s.lists[lang]
	if len(list) == 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownLang, lang)
	}
	if i < 0 {
		i = -i
	}
	return list[i%len(list)], nil
}

// Len returns the number of entries for lang.
func (s *Source) Len(lang string) int { return len(s.lists[lang]) }

// Stats returns entry counts per language.
func (s *Source) Stats() map[string]int {
	out := make(map[string]int, len(s.lists))
	for lang, list := range s.lists {
		out[lang] = len(list)
	}
	return out
}

// Languages lists the supported languages.
func Languages() []string { return append([]string(nil), languages...) }

// Alphabet returns the on-screen letters for lang.
func Alphabet(lang string) ([]string, error) {
	a, ok := alphabets[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLang, lang)
	}
	return strings.Split(a, ""), nil
}

func randomIndex(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}
