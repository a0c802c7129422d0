package augment

import (
	"sort"
	"strings"
)

// Synonyms maps a word to the variants it may be replaced with.
type Synonyms map[string][]string

// Lookup is case-insensitive.
func (s Synonyms) Lookup(word string) ([]string, bool) {
	v, ok := s[strings.ToLower(word)]
	return v, ok && len(v) > 0
}

// Pool flattens every variant in key order, so draws from it are reproducible.
func (s Synonyms) Pool() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var pool []string
	for _, k := range keys {
		pool = append(pool, s[k]...)
	}
	return pool
}

// Merge returns a new table with overrides applied on top of s.
func (s Synonyms) Merge(overrides map[string][]string) Synonyms {
	out := make(Synonyms, len(s)+len(overrides))
	for k, v := range s {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		out[strings.ToLower(k)] = append([]string(nil), v...)
	}
	return out
}

// DefaultSynonyms returns a fresh copy of the built-in Indonesian table.
func DefaultSynonyms() Synonyms {
	return Synonyms{}.Merge(defaultSynonyms)
}

var defaultSynonyms = map[string][]string{
	"bagus":     {"baik", "mantap", "oke", "lumayan"},
	"baik":      {"bagus", "mantap", "oke"},
	"cepat":     {"kilat", "sigap", "gesit"},
	"lambat":    {"lama", "pelan", "lemot"},
	"mahal":     {"kemahalan", "tidak murah"},
	"murah":     {"terjangkau", "ekonomis"},
	"ramah":     {"sopan", "baik hati", "friendly"},
	"jelek":     {"buruk", "tidak bagus", "kurang"},
	"aplikasi":  {"app", "apk"},
	"driver":    {"abang", "kakak", "pengemudi"},
	"makanan":   {"makan", "pesanan"},
	"enak":      {"lezat", "nikmat", "sedap"},
	"tidak":     {"gak", "nggak", "ga", "tak"},
	"sangat":    {"banget", "sekali", "amat"},
	"sudah":     {"udah", "dah"},
	"saya":      {"aku", "gue", "gw"},
	"bisa":      {"dapat", "mampu"},
	"harga":     {"tarif", "biaya", "ongkos"},
	"pelayanan": {"layanan", "service"},
	"puas":      {"senang", "happy"},
	"kecewa":    {"sedih", "disappointed"},
}
