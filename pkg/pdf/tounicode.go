package pdf

import (
	"strings"
	"unicode/utf16"
)

// toUnicode maps character codes of a font to text using its ToUnicode CMap.
type toUnicode struct {
	codeLen int
	chars   map[uint32]string
	ranges  []codeRange
}

// codeRange is one bfrange entry. Either base is incremented across the
// range, or array lists one destination per code.
type codeRange struct {
	lo, hi uint32
	base   []rune
	array  []string
}

// parseToUnicode reads the bfchar, bfrange and codespacerange sections of a
// CMap. Malformed entries are skipped.
func parseToUnicode(data []byte) *toUnicode {
	cm := &toUnicode{chars: make(map[uint32]string)}
	l := &lexer{data: data}
	for {
		tok, ok := l.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			continue
		}
		switch tok.text {
		case "begincodespacerange":
			cm.parseCodespace(l)
		case "beginbfchar":
			cm.parseChars(l)
		case "beginbfrange":
			cm.parseRanges(l)
		}
	}
	if cm.codeLen == 0 {
		cm.codeLen = 2
	}
	return cm
}

func (cm *toUnicode) parseCodespace(l *lexer) {
	for {
		tok, ok := l.next()
		if !ok || tok.kind == tokOperator {
			return
		}
		if tok.kind == tokString && cm.codeLen == 0 {
			cm.codeLen = len(tok.text)
		}
	}
}

func (cm *toUnicode) parseChars(l *lexer) {
	var src *token
	for {
		tok, ok := l.next()
		if !ok || tok.kind == tokOperator {
			return
		}
		if src == nil {
			src = &tok
			continue
		}
		if src.kind == tokString {
			cm.noteCodeLen(src.text)
			cm.chars[code(src.text)] = utf16String(tok.text)
		}
		src = nil
	}
}

func (cm *toUnicode) parseRanges(l *lexer) {
	for {
		lo, ok := l.next()
		if !ok || lo.kind == tokOperator {
			return
		}
		hi, ok := l.next()
		if !ok {
			return
		}
		dst, ok := l.next()
		if !ok {
			return
		}
		if lo.kind != tokString || hi.kind != tokString {
			continue
		}
		cm.noteCodeLen(lo.text)
		r := codeRange{lo: code(lo.text), hi: code(hi.text)}
		switch dst.kind {
		case tokString:
			r.base = []rune(utf16String(dst.text))
		case tokArrayStart:
			for {
				item, ok := l.next()
				if !ok || item.kind == tokArrayEnd {
					break
				}
				if item.kind == tokString {
					r.array = append(r.array, utf16String(item.text))
				}
			}
		default:
			continue
		}
		if r.hi >= r.lo {
			cm.ranges = append(cm.ranges, r)
		}
	}
}

func (cm *toUnicode) noteCodeLen(src string) {
	if cm.codeLen == 0 && len(src) > 0 {
		cm.codeLen = len(src)
	}
}

// lookup maps one character code.
func (cm *toUnicode) lookup(c uint32) (string, bool) {
	if s, ok := cm.chars[c]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if c < r.lo || c > r.hi {
			continue
		}
		offset := int(c - r.lo)
		if r.array != nil {
			if offset < len(r.array) {
				return r.array[offset], true
			}
			return "", false
		}
		if len(r.base) == 0 {
			return "", false
		}
		out := append([]rune(nil), r.base...)
		out[len(out)-1] += rune(offset)
		return string(out), true
	}
	return "", false
}

// decode maps a shown string. Unmapped ASCII codes pass through; other
// unmapped codes are dropped.
func (cm *toUnicode) decode(raw []byte) string {
	var b strings.Builder
	n := cm.codeLen
	for i := 0; i < len(raw); i += n {
		end := min(i+n, len(raw))
		c := code(string(raw[i:end]))
		if s, ok := cm.lookup(c); ok {
			b.WriteString(s)
		} else if c < 0x80 {
			b.WriteRune(rune(c))
		}
	}
	return b.String()
}

// count returns the number of mapped codes.
func (cm *toUnicode) count() int {
	n := len(cm.chars)
	for _, r := range cm.ranges {
		if r.array != nil {
			n += len(r.array)
		} else {
			n += int(r.hi-r.lo) + 1
		}
	}
	return n
}

func code(s string) uint32 {
	var c uint32
	for i := 0; i < len(s); i++ {
		c = c<<8 | uint32(s[i])
	}
	return c
}

// utf16String decodes a UTF-16BE destination string. A single byte is taken
// as a Latin-1 code point.
func utf16String(s string) string {
	if len(s) == 1 {
		return string(rune(s[0]))
	}
	units := make([]uint16, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		units = append(units, uint16(s[i])<<8|uint16(s[i+1]))
	}
	return string(utf16.Decode(units))
}
