package consistency

// Keywords are the four polarity tiers scored by the checker. Matching is by
// substring, so multi-word phrases are allowed.
type Keywords struct {
	VeryNegative []string `yaml:"veryNegative"`
	Negative     []string `yaml:"negative"`
	Positive     []string `yaml:"positive"`
	VeryPositive []string `yaml:"veryPositive"`
}

// NeutralCues are the strong polarity words used to verify rating-3 reviews.
type NeutralCues struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// DefaultKeywords returns a fresh copy of the built-in tiers.
func DefaultKeywords() Keywords {
	return Keywords{
		VeryNegative: clone(veryNegative),
		Negative:     clone(negative),
		Positive:     clone(positive),
		VeryPositive: clone(veryPositive),
	}
}

// DefaultNeutralCues returns a fresh copy of the built-in neutral cues.
func DefaultNeutralCues() NeutralCues {
	return NeutralCues{Positive: clone(strongPositive), Negative: clone(strongNegative)}
}

// Override replaces every non-empty tier of k with the one from o.
func (k Keywords) Override(o Keywords) Keywords {
	if len(o.VeryNegative) > 0 {
		k.VeryNegative = clone(o.VeryNegative)
	}
	if len(o.Negative) > 0 {
		k.Negative = clone(o.Negative)
	}
	if len(o.Positive) > 0 {
		k.Positive = clone(o.Positive)
	}
	if len(o.VeryPositive) > 0 {
		k.VeryPositive = clone(o.VeryPositive)
	}
	return k
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

var veryNegative = []string{
	"sampah", "kacau", "parah", "bangsat", "anjing", "taik", "tai", "bego", "bodoh",
	"goblok", "tolol", "busuk", "jelek banget", "buruk banget", "sangat kecewa",
	"tidak berguna", "gak guna", "ga guna", "bohong", "nipu", "penipuan", "tipu",
	"kntl", "kontol", "memek", "ngentot", "bajingan", "brengsek", "sialan", "kampret",
	"worst", "terrible", "horrible", "sangat buruk", "paling buruk", "kapok",
	"gak akan", "ga akan", "tidak akan", "never", "rugi banget", "buang waktu",
	"menyesal", "nyesel", "kecewa berat", "sangat mengecewakan", "uninstall",
}

var negative = []string{
	"kecewa", "lama", "lambat", "susah", "mahal", "jelek", "buruk", "error",
	"gagal", "batal", "cancel", "ribet", "rumit", "sulit", "tidak bisa",
	"ga bisa", "gak bisa", "lemot", "eror", "bug", "masalah", "problem",
	"kesal", "jengkel", "sebel", "sebal", "cape", "capek", "males", "malas",
	"komplain", "keluhan", "protes", "zonk", "rugi", "telat", "terlambat",
	"not good", "bad", "worse", "belagu", "judes", "sombong", "kurang",
}

var positive = []string{
	"bagus", "baik", "cepat", "cepet", "ramah", "murah", "ok", "oke", "okay",
	"mantap", "mantab", "mantul", "sip", "siip", "membantu", "memudahkan",
	"mudah", "praktis", "nyaman", "aman", "puas", "senang", "suka", "like",
	"helpful", "good", "nice", "great", "best", "terbaik", "rekomendasi",
	"rekomen", "recommended", "lancar", "sukses", "berhasil", "worth",
	"tepat", "tepat waktu", "on time", "ontime", "cukup", "lumayan",
}

var veryPositive = []string{
	"sangat bagus", "sangat baik", "luar biasa", "amazing", "excellent",
	"perfect", "sempurna", "terbaik", "the best", "mantap banget", "top",
	"jempol", "keren banget", "hebat", "istimewa", "memuaskan", "puas banget",
	"sangat puas", "sangat membantu", "sangat memuaskan", "sukses selalu",
	"terima kasih", "thanks", "thank you", "love", "suka banget", "super",
	"awesome", "fantastic", "wonderful", "best app", "aplikasi terbaik",
}

var strongPositive = []string{
	"bagus", "mantap", "keren", "recommended", "puas", "senang",
	"suka", "cepat", "ramah", "nyaman", "terbaik", "top", "josss",
	"mantul", "oke banget", "luar biasa", "hebat", "memuaskan",
}

var strongNegative = []string{
	"jelek", "buruk", "kecewa", "lambat", "parah", "mengecewakan",
	"tidak recommended", "mahal", "lama", "error", "bug", "masalah",
	"susah", "ribet", "payah", "sampah", "brengsek", "bangsat",
	"uninstall", "hapus", "bintang 1", "worst", "terrible",
}
