package scoringdomain

import "regexp"

// Matches holds the detected emoji tokens of one message, split by
// syntax. Multiplicity is preserved: three identical tokens yield three
// entries. Classification into scoring categories happens later, in the
// calculator.
type Matches struct {
	Custom      []string // <:name:id> / <a:name:id>
	Shortcodes  []string // :name:
	Pictographs []string // native Unicode emoji
}

// All returns every detected token in detection order.
func (m Matches) All() []string {
	out := make([]string, 0, len(m.Custom)+len(m.Shortcodes)+len(m.Pictographs))
	out = append(out, m.Custom...)
	out = append(out, m.Shortcodes...)
	out = append(out, m.Pictographs...)
	return out
}

// Count returns the total number of detected tokens.
func (m Matches) Count() int {
	return len(m.Custom) + len(m.Shortcodes) + len(m.Pictographs)
}

var (
	customPattern    = regexp.MustCompile(`<a?:[A-Za-z0-9_~]+:\d+>`)
	shortcodePattern = regexp.MustCompile(`:[a-z0-9_-]+:`)
)

// Match detects all emoji-like tokens in a message.
//
// Custom tokens are extracted and removed first so their inner colons
// cannot be mis-read as shortcodes. Pictograph scanning runs against the
// original text; its character ranges never overlap the ASCII-only custom
// and shortcode syntax. Empty or emoji-free input yields empty lists.
func Match(text string) Matches {
	custom := customPattern.FindAllString(text, -1)
	stripped := customPattern.ReplaceAllString(text, " ")
	shortcodes := shortcodePattern.FindAllString(stripped, -1)

	return Matches{
		Custom:      custom,
		Shortcodes:  shortcodes,
		Pictographs: scanPictographs(text),
	}
}

// emojiRanges are the Unicode blocks treated as pictographs. Covers the
// symbol blocks study communities actually use (clocks, tomatoes, stars)
// without swallowing ordinary punctuation.
var emojiRanges = [][2]rune{
	{0x231A, 0x231B}, // watch, hourglass
	{0x23E9, 0x23FA}, // media/clock symbols
	{0x2600, 0x26FF}, // miscellaneous symbols
	{0x2700, 0x27BF}, // dingbats
	{0x2B00, 0x2BFF}, // arrows, stars
	{0x1F1E6, 0x1F1FF}, // regional indicators
	{0x1F300, 0x1F5FF}, // misc symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA70, 0x1FAFF}, // symbols extended
}

func isEmojiRune(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

const (
	variationSelector = 0xFE0F
	zeroWidthJoiner   = 0x200D
)

func isSkinTone(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}

// scanPictographs walks the text rune-by-rune. A pictograph token is a
// base emoji rune plus any trailing variation selector, skin tone, or
// ZWJ-joined continuation, so a family emoji is one token, not four.
func scanPictographs(text string) []string {
	runes := []rune(text)
	var out []string

	for i := 0; i < len(runes); {
		if !isEmojiRune(runes[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) {
			r := runes[j]
			if r == variationSelector || isSkinTone(r) {
				j++
				continue
			}
			if r == zeroWidthJoiner && j+1 < len(runes) && isEmojiRune(runes[j+1]) {
				j += 2
				continue
			}
			break
		}
		out = append(out, string(runes[i:j]))
		i = j
	}
	return out
}
