package signals

import (
	"strings"
	"unicode"
)

// Metaphone encodes a single word as its consonant skeleton. Non-letters are
// ignored; the code is not truncated.
func Metaphone(word string) string {
	var letters strings.Builder
	for _, r := range word {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			letters.WriteRune(unicode.ToUpper(r))
		}
	}
	w := letters.String()
	if w == "" {
		return ""
	}

	var out strings.Builder
	at := func(i int) byte {
		if i < 0 || i >= len(w) {
			return 0
		}
		return w[i]
	}

	start := 0
	switch {
	case strings.HasPrefix(w, "AE"), strings.HasPrefix(w, "GN"), strings.HasPrefix(w, "KN"),
		strings.HasPrefix(w, "PN"), strings.HasPrefix(w, "WR"):
		start = 1
	case w[0] == 'X':
		out.WriteByte('S')
		start = 1
	case strings.HasPrefix(w, "WH"):
		out.WriteByte('W')
		start = 2
	}

	for i := start; i < len(w); i++ {
		c := w[i]
		// Doubled letters collapse, except C.
		if c != 'C' && i > start && c == at(i-1) {
			continue
		}
		switch c {
		case 'A', 'E', 'I', 'O', 'U':
			if i == start {
				out.WriteByte(c)
			}
		case 'B':
			if !(i == len(w)-1 && at(i-1) == 'M') {
				out.WriteByte('B')
			}
		case 'C':
			switch {
			case at(i+1) == 'I' && at(i+2) == 'A':
				out.WriteByte('X')
			case at(i+1) == 'H':
				if at(i-1) == 'S' {
					out.WriteByte('K')
				} else {
					out.WriteByte('X')
				}
				i++
			case isFrontVowel(at(i + 1)):
				if at(i-1) != 'S' {
					out.WriteByte('S')
				}
			default:
				out.WriteByte('K')
			}
		case 'D':
			if at(i+1) == 'G' && isFrontVowel(at(i+2)) {
				out.WriteByte('J')
				i += 2
			} else {
				out.WriteByte('T')
			}
		case 'G':
			switch {
			case at(i+1) == 'H' && i+2 < len(w) && !isVowel(at(i+2)):
				// GH before a consonant is silent.
			case at(i+1) == 'N' && (i+2 == len(w) || (at(i+2) == 'E' && at(i+3) == 'D' && i+4 == len(w))):
			case isFrontVowel(at(i+1)) && at(i-1) != 'G':
				out.WriteByte('J')
			default:
				out.WriteByte('K')
			}
		case 'H':
			if isVowel(at(i+1)) && !strings.ContainsRune("CSPTG", rune(at(i-1))) {
				out.WriteByte('H')
			}
		case 'K':
			if at(i-1) != 'C' {
				out.WriteByte('K')
			}
		case 'P':
			if at(i+1) == 'H' {
				out.WriteByte('F')
				i++
			} else {
				out.WriteByte('P')
			}
		case 'Q':
			out.WriteByte('K')
		case 'S':
			switch {
			case at(i+1) == 'H':
				out.WriteByte('X')
				i++
			case at(i+1) == 'I' && (at(i+2) == 'O' || at(i+2) == 'A'):
				out.WriteByte('X')
			default:
				out.WriteByte('S')
			}
		case 'T':
			switch {
			case at(i+1) == 'I' && (at(i+2) == 'O' || at(i+2) == 'A'):
				out.WriteByte('X')
			case at(i+1) == 'H':
				out.WriteByte('0')
				i++
			case at(i+1) == 'C' && at(i+2) == 'H':
			default:
				out.WriteByte('T')
			}
		case 'V':
			out.WriteByte('F')
		case 'W', 'Y':
			if isVowel(at(i + 1)) {
				out.WriteByte(c)
			}
		case 'X':
			out.WriteString("KS")
		case 'Z':
			out.WriteByte('S')
		case 'F', 'J', 'L', 'M', 'N', 'R':
			out.WriteByte(c)
		}
	}
	return out.String()
}

// MetaphoneText encodes every whitespace-separated token and joins the
// codes with single spaces. Tokens that encode to nothing keep their slot
// inside the text, but leading and trailing blanks are trimmed.
func MetaphoneText(s string) string {
	toks := strings.Fields(s)
	codes := make([]string, len(toks))
	for i, t := range toks {
		codes[i] = Metaphone(t)
	}
	return strings.TrimSpace(strings.Join(codes, " "))
}

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

func isFrontVowel(c byte) bool {
	return c == 'E' || c == 'I' || c == 'Y'
}
