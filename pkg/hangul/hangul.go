/*
Package hangul splits Korean text into compatibility jamo.

Every rune a decomposition returns is one comparison symbol. A precomposed syllable block
such as '역' becomes its lead, vowel and optional trailing jamo (ㅇ ㅕ ㄱ), while any
non-Hangul rune (ASCII, digits, punctuation) passes through as a single symbol.

	full, chosung := hangul.Decompose("역삼동")
	// full:    ㅇ ㅕ ㄱ ㅅ ㅏ ㅁ ㄷ ㅗ ㅇ
	// chosung: ㅇ ㅅ ㄷ

The chosung sequence only carries the lead consonant of each syllable, which is what a
user types when abbreviating a name with an IME (ㅇㅅㄷ for 역삼동). Non-syllable runes are
dropped from it entirely.
*/
package hangul

import (
	"golang.org/x/text/unicode/norm"
)

// Unicode layout of the precomposed syllable block.
const (
	syllableBase = 0xAC00
	syllableLast = 0xD7A3
	vowelCount   = 21
	tailCount    = 28
	leadStride   = vowelCount * tailCount
)

// Conjoining jamo ranges, mapped onto the compatibility tables below.
const (
	conjoinLeadFirst  = 0x1100
	conjoinLeadLast   = 0x1112
	conjoinVowelFirst = 0x1161
	conjoinVowelLast  = 0x1175
	conjoinTailFirst  = 0x11A8
	conjoinTailLast   = 0x11C2
)

var (
	leads = []rune{
		'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
		'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
	}
	vowels = []rune{
		'ㅏ', 'ㅐ', 'ㅑ', 'ㅒ', 'ㅓ', 'ㅔ', 'ㅕ', 'ㅖ', 'ㅗ', 'ㅘ', 'ㅙ',
		'ㅚ', 'ㅛ', 'ㅜ', 'ㅝ', 'ㅞ', 'ㅟ', 'ㅠ', 'ㅡ', 'ㅢ', 'ㅣ',
	}
	// tails[0] is the empty final.
	tails = []rune{
		0, 'ㄱ', 'ㄲ', 'ㄳ', 'ㄴ', 'ㄵ', 'ㄶ', 'ㄷ', 'ㄹ', 'ㄺ',
		'ㄻ', 'ㄼ', 'ㄽ', 'ㄾ', 'ㄿ', 'ㅀ', 'ㅁ', 'ㅂ', 'ㅄ', 'ㅅ',
		'ㅆ', 'ㅇ', 'ㅈ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
	}
)

// Decompose returns the full jamo sequence and the chosung-only sequence of text.
// It never fails: runes it does not know are kept as literal symbols in full.
func Decompose(text string) (full, chosung []rune) {
	text = norm.NFC.String(text)
	full = make([]rune, 0, len(text))

	for _, r := range text {
		switch {
		case IsSyllable(r):
			idx := r - syllableBase
			lead := leads[idx/leadStride]
			full = append(full, lead, vowels[(idx%leadStride)/tailCount])
			if tail := tails[idx%tailCount]; tail != 0 {
				full = append(full, tail)
			}
			chosung = append(chosung, lead)
		case r >= conjoinLeadFirst && r <= conjoinLeadLast:
			lead := leads[r-conjoinLeadFirst]
			full = append(full, lead)
			chosung = append(chosung, lead)
		case r >= conjoinVowelFirst && r <= conjoinVowelLast:
			full = append(full, vowels[r-conjoinVowelFirst])
		case r >= conjoinTailFirst && r <= conjoinTailLast:
			full = append(full, tails[r-conjoinTailFirst+1])
		default:
			full = append(full, r)
		}
	}
	return full, chosung
}

// Full returns only the full jamo sequence of text.
func Full(text string) []rune {
	full, _ := Decompose(text)
	return full
}

// Chosung renders the lead consonants of text as a string, e.g. "ㅇㅅㄷ" for "역삼동".
func Chosung(text string) string {
	_, chosung := Decompose(text)
	return string(chosung)
}

// IsSyllable reports whether r is a precomposed Hangul syllable block.
func IsSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableLast
}

// Reverse returns a reversed copy of path.
func Reverse(path []rune) []rune {
	out := make([]rune, len(path))
	for i, r := range path {
		out[len(path)-1-i] = r
	}
	return out
}
