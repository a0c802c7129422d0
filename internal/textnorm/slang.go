package textnorm

import "strings"

// Dictionary maps lowercase slang tokens to their standard Indonesian form.
// An empty replacement deletes the token.
type Dictionary map[string]string

// Lookup finds word case-insensitively.
func (d Dictionary) Lookup(word string) (string, bool) {
	repl, ok := d[strings.ToLower(word)]
	return repl, ok
}

// Merge returns a new dictionary with overrides applied on top of d.
func (d Dictionary) Merge(overrides map[string]string) Dictionary {
	out := make(Dictionary, len(d)+len(overrides))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// DefaultSlang returns the built-in slang and abbreviation table.
func DefaultSlang() Dictionary {
	out := make(Dictionary, len(defaultSlang))
	for k, v := range defaultSlang {
		out[k] = v
	}
	return out
}

var defaultSlang = map[string]string{
	// negation
	"gk": "tidak", "ga": "tidak", "gak": "tidak", "tdk": "tidak", "gx": "tidak",
	"ngga": "tidak", "nggak": "tidak", "enggak": "tidak", "kagak": "tidak", "kaga": "tidak",
	// conjunctions
	"yg": "yang", "dgn": "dengan", "dg": "dengan", "utk": "untuk",
	"krn": "karena", "karna": "karena", "krna": "karena",
	// time
	"sdh": "sudah", "udh": "sudah", "udah": "sudah",
	"blm": "belum", "blum": "belum", "blom": "belum",
	"skrg": "sekarang", "skrng": "sekarang", "lg": "lagi", "lgi": "lagi",
	// common words
	"jg": "juga", "jga": "juga", "jd": "jadi", "jdi": "jadi",
	"klo": "kalau", "kalo": "kalau", "klau": "kalau", "bs": "bisa", "bsa": "bisa",
	"dr": "dari", "dri": "dari", "sm": "sama", "sma": "sama",
	"spt": "seperti", "sprti": "seperti", "spy": "supaya", "biar": "supaya",
	"tp": "tapi", "tpi": "tapi",
	// pronouns
	"sy": "saya", "gw": "saya", "gue": "saya", "gua": "saya", "ane": "saya",
	"kmu": "kamu", "lu": "kamu", "lo": "kamu", "elu": "kamu", "ente": "kamu",
	// other
	"org": "orang", "orng": "orang", "ornag": "orang", "hrs": "harus", "hrus": "harus",
	"dpt": "dapat", "dpat": "dapat", "dapet": "dapat", "msh": "masih", "msih": "masih",
	"emg": "memang", "emang": "memang", "mmg": "memang", "knp": "kenapa", "knapa": "kenapa",
	"gmn": "bagaimana", "gmna": "bagaimana", "gimana": "bagaimana",
	"dmn": "dimana", "dmna": "dimana", "kpn": "kapan",
	// thanks and agreement
	"thx": "terima kasih", "tks": "terima kasih", "thanks": "terima kasih",
	"makasih": "terima kasih", "mksh": "terima kasih", "makasi": "terima kasih",
	"trims": "terima kasih", "trmksh": "terima kasih",
	"ok": "oke", "okey": "oke", "okay": "oke", "oks": "oke",
	// intensifiers
	"bgt": "banget", "bngt": "banget", "bngtt": "banget", "bgtt": "banget",
	// positive expressions
	"mantab": "mantap", "mantul": "mantap", "mantep": "mantap",
	"josss": "jos", "joss": "jos",
	// negative expressions
	"jlek": "jelek", "ancur": "hancur", "nyebelin": "menyebalkan",
	"sebel": "kesal", "kesel": "kesal",
	// particles
	"bkn": "bukan", "bukn": "bukan", "aja": "saja", "doang": "saja", "doank": "saja",
	"nih": "ini", "tuh": "itu", "bener": "benar", "bnr": "benar", "salh": "salah", "slh": "salah",
	// app vocabulary
	"aplikasinya": "aplikasi", "appnya": "aplikasi", "app": "aplikasi", "apps": "aplikasi",
	"apk": "aplikasi", "drivernya": "driver", "drver": "driver", "drvr": "driver",
	"ojol": "ojek online",
	// speed
	"lelet": "lambat", "lemot": "lambat", "cpt": "cepat", "cpet": "cepat", "cepet": "cepat",
	"lma": "lama",
}
