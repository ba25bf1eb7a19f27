// Package uwu rewrites text into its uwuified form: word and emoji
// substitutions, nyaification, l/r folding, and randomized stutters and
// emoticons.
package uwu

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Replacement tables run in order; later passes see earlier output.
var wordReplacements = []struct{ from, to string }{
	{"small", "smol"},
	{"cute", "kawaii~"},
	{"fluff", "floof"},
	{"love", "luv"},
	{"stupid", "baka"},
	{"idiot", "baka"},
	{"what", "nani"},
	{"meow", "nya~"},
	{"roar", "rawrr~"},
}

var emoticons = []string{
	"rawr x3", "OwO", "UwU", "o.O", "-.-", ">w<", "σωσ", "òωó", "ʘwʘ",
	":3", "XD", "nyaa~~", "mya", ">_<", "rawr", "uwu", "^^", "^^;;",
}

var emojiReplacements = []struct{ from, to string }{
	{"😸", ":cat:"},
	{"😢", ":crying_cat_face:"},
	{"😍", ":heart_eyes_cat:"},
	{"😂", ":joy_cat:"},
	{"😗", ":kissing_cat:"},
	{"😠", ":pouting_cat:"},
	{"😱", ":scream_cat:"},
	{"😆", ":smile_cat:"},
	{"🙂", ":smiley_cat:"},
	{"😀", ":smiley_cat:"},
	{"😏", ":smirk_cat:"},
	{"🥺", ":pleading_face::point_right::point_left:"},
}

var (
	punctuationRe = regexp.MustCompile(`[.!?\r\n\t]`)
	stutterRe     = regexp.MustCompile(`(\s)([a-zA-Z])`)
	nyaRe         = regexp.MustCompile(`n([aeou][^aeiou])`)
)

// Default chances for the randomized passes.
const (
	DefaultStutterStrength = 0.2
	DefaultEmojiStrength   = 0.1
)

// Transformer uwuifies text. It holds no per-call state; one instance is
// safe for concurrent use.
type Transformer struct {
	stutter float64
	emoji   float64
	seed    int64
	seeded  bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithStutterStrength sets the chance that a word start stutters.
func WithStutterStrength(strength float64) Option {
	return func(t *Transformer) { t.stutter = strength }
}

// WithEmojiStrength sets the chance that a punctuation mark becomes an
// emoticon.
func WithEmojiStrength(strength float64) Option {
	return func(t *Transformer) { t.emoji = strength }
}

// WithSeed pins the random stream so repeated runs produce identical output.
func WithSeed(seed int64) Option {
	return func(t *Transformer) {
		t.seed = seed
		t.seeded = true
	}
}

// New builds a Transformer with the default strengths and applies opts.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		stutter: DefaultStutterStrength,
		emoji:   DefaultEmojiStrength,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform uwuifies s.
func (t *Transformer) Transform(s string) string {
	seed := t.seed
	if !t.seeded {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s = strings.ToLower(s)
	for _, r := range wordReplacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	s = nyaify(s)
	s = foldLR(s)
	s = t.stutterize(rng, s)
	s = t.emoticonize(rng, s)
	for _, r := range emojiReplacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

// nyaify slips a y between an n and a following a/e/o/u when a consonant
// comes after.
func nyaify(s string) string {
	return nyaRe.ReplaceAllString(s, "ny$1")
}

// foldLR turns l and r into w unless a w already sits on either side.
// Neighbor checks look at the original text, the way lookarounds would.
func foldLR(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	for i, c := range runes {
		if (c == 'l' || c == 'r') &&
			(i == 0 || runes[i-1] != 'w') &&
			(i == len(runes)-1 || runes[i+1] != 'w') {
			out[i] = 'w'
			continue
		}
		out[i] = c
	}
	return string(out)
}

// stutterize repeats the first letter of some words: " cat" becomes " c-cat".
func (t *Transformer) stutterize(rng *rand.Rand, s string) string {
	return stutterRe.ReplaceAllStringFunc(s, func(m string) string {
		if rng.Float64() < t.stutter {
			return m + "-" + m[len(m)-1:]
		}
		return m
	})
}

// emoticonize swaps some punctuation for a random emoticon.
func (t *Transformer) emoticonize(rng *rand.Rand, s string) string {
	return punctuationRe.ReplaceAllStringFunc(s, func(m string) string {
		if rng.Float64() < t.emoji {
			return " " + emoticons[rng.Intn(len(emoticons))] + " "
		}
		return m
	})
}
