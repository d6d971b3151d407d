package pdf

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokString
	tokOperator
	tokArrayStart
	tokArrayEnd
	tokDictStart
	tokDictEnd
)

type token struct {
	kind tokenKind
	num  float64
	text string
}

// lexer splits a content stream (or a CMap, which uses the same syntax) into
// tokens.
type lexer struct {
	data []byte
	pos  int
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return strings.IndexByte("()<>[]{}/%", b) >= 0
}

func (l *lexer) next() (token, bool) {
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return token{}, false
		}
		c := l.data[l.pos]
		switch c {
		case '(':
			l.pos++
			return token{kind: tokString, text: l.literal()}, true
		case '<':
			if l.peek(1) == '<' {
				l.pos += 2
				return token{kind: tokDictStart}, true
			}
			l.pos++
			return token{kind: tokString, text: l.hexString()}, true
		case '>':
			if l.peek(1) == '>' {
				l.pos += 2
				return token{kind: tokDictEnd}, true
			}
			l.pos++
			continue
		case '[':
			l.pos++
			return token{kind: tokArrayStart}, true
		case ']':
			l.pos++
			return token{kind: tokArrayEnd}, true
		case '/':
			l.pos++
			return token{kind: tokName, text: l.regular()}, true
		}

		word := l.regular()
		if word == "" {
			// stray delimiter such as ')' or '{'
			l.pos++
			continue
		}
		if n, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokNumber, num: n, text: word}, true
		}
		return token{kind: tokOperator, text: word}, true
	}
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.data) {
		return l.data[l.pos+offset]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isWhitespace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal reads a (string) whose opening parenthesis was consumed.
func (l *lexer) literal() string {
	var b []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return string(b)
			}
			b = append(b, c)
		case '\\':
			if l.pos >= len(l.data) {
				return string(b)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r':
				if l.peek(0) == '\n' {
					l.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
					v = v*8 + int(l.data[l.pos]-'0')
					l.pos++
				}
				b = append(b, byte(v))
			default:
				b = append(b, e)
			}
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

// hexString reads a <hex string> whose opening bracket was consumed.
func (l *lexer) hexString() string {
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return string(out)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// skipInlineImage moves past the binary data following an ID operator.
func (l *lexer) skipInlineImage() {
	l.pos++ // single whitespace after ID
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			l.pos > 0 && isWhitespace(l.data[l.pos-1]) &&
			(l.pos+2 == len(l.data) || isWhitespace(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// matrix is a PDF transformation [a b c d e f] applied to row vectors.
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// pageFont is what the interpreter knows about a font resource.
type pageFont struct {
	name      string
	twoByte   bool
	toUnicode *toUnicode
}

func (f *pageFont) decode(raw string) string {
	switch {
	case f == nil:
	case f.toUnicode != nil:
		return f.toUnicode.decode([]byte(raw))
	case f.twoByte:
		var b strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			b.WriteRune(rune(raw[i])<<8 | rune(raw[i+1]))
		}
		return b.String()
	}
	s, err := charmap.Windows1252.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return s
}

func (f *pageFont) glyphs(raw string) int {
	if f != nil && f.twoByte {
		return len(raw) / 2
	}
	return len(raw)
}

type graphicsState struct {
	ctm       matrix
	font      *pageFont
	size      float64
	charSpace float64
	wordSpace float64
	hscale    float64
	leading   float64
	rise      float64
}

// glyphAdvance is the assumed glyph width in text space units per unit of
// font size; embedded metrics are not consulted.
const glyphAdvance = 0.5

// contentParser interprets the text and rectangle operators of a content
// stream. Everything else (colors, curves, images, clipping) is skipped.
type contentParser struct {
	lex     lexer
	height  float64
	fonts   map[string]*pageFont
	gs      graphicsState
	stack   []graphicsState
	tm, tlm matrix
	pending []BoundingBox
	objects Objects
}

// parseContent extracts text runs and rectangles from a content stream in
// top-left page coordinates.
func parseContent(content []byte, pageHeight float64, fonts map[string]*pageFont) Objects {
	p := &contentParser{
		lex:    lexer{data: content},
		height: pageHeight,
		fonts:  fonts,
		gs:     graphicsState{ctm: identity, hscale: 1},
		tm:     identity,
		tlm:    identity,
	}
	p.run()
	return p.objects
}

func (p *contentParser) run() {
	var operands []token
	var array []token
	inArray := false
	for {
		tok, ok := p.lex.next()
		if !ok {
			return
		}
		switch tok.kind {
		case tokArrayStart:
			inArray, array = true, nil
		case tokArrayEnd:
			inArray = false
			operands = append(operands, token{kind: tokArrayStart, text: encodeArray(array)})
		case tokOperator:
			p.operator(tok.text, operands)
			operands = operands[:0]
			if tok.text == "ID" {
				p.lex.skipInlineImage()
			}
		default:
			if inArray {
				array = append(array, tok)
			} else {
				operands = append(operands, tok)
			}
		}
	}
}

// encodeArray packs a TJ array into one string: strings are kept, kerning
// numbers that open a visible gap become a space.
func encodeArray(items []token) string {
	var b strings.Builder
	for _, it := range items {
		switch it.kind {
		case tokString:
			b.WriteString(it.text)
		case tokNumber:
			if it.num < -250 {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func nums(operands []token, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, op := range operands[len(operands)-n:] {
		if op.kind != tokNumber {
			return nil, false
		}
		out[i] = op.num
	}
	return out, true
}

func lastString(operands []token) (string, bool) {
	if len(operands) == 0 {
		return "", false
	}
	op := operands[len(operands)-1]
	if op.kind != tokString && op.kind != tokArrayStart {
		return "", false
	}
	return op.text, true
}

func (p *contentParser) operator(op string, operands []token) {
	gs := &p.gs
	switch op {
	case "q":
		p.stack = append(p.stack, p.gs)
	case "Q":
		if n := len(p.stack); n > 0 {
			p.gs = p.stack[n-1]
			p.stack = p.stack[:n-1]
		}
	case "cm":
		if v, ok := nums(operands, 6); ok {
			gs.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.mul(gs.ctm)
		}
	case "BT":
		p.tm, p.tlm = identity, identity
	case "Tf":
		if len(operands) >= 2 && operands[0].kind == tokName && operands[1].kind == tokNumber {
			gs.font = p.fonts[operands[0].text]
			gs.size = operands[1].num
		}
	case "Tc":
		if v, ok := nums(operands, 1); ok {
			gs.charSpace = v[0]
		}
	case "Tw":
		if v, ok := nums(operands, 1); ok {
			gs.wordSpace = v[0]
		}
	case "Tz":
		if v, ok := nums(operands, 1); ok {
			gs.hscale = v[0] / 100
		}
	case "TL":
		if v, ok := nums(operands, 1); ok {
			gs.leading = v[0]
		}
	case "Ts":
		if v, ok := nums(operands, 1); ok {
			gs.rise = v[0]
		}
	case "Td":
		if v, ok := nums(operands, 2); ok {
			p.moveText(v[0], v[1])
		}
	case "TD":
		if v, ok := nums(operands, 2); ok {
			gs.leading = -v[1]
			p.moveText(v[0], v[1])
		}
	case "Tm":
		if v, ok := nums(operands, 6); ok {
			p.tlm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			p.tm = p.tlm
		}
	case "T*":
		p.moveText(0, -gs.leading)
	case "Tj", "TJ":
		if s, ok := lastString(operands); ok {
			p.show(s)
		}
	case "'":
		if s, ok := lastString(operands); ok {
			p.moveText(0, -gs.leading)
			p.show(s)
		}
	case "\"":
		if v, ok := nums(operands[:max(len(operands)-1, 0)], 2); ok {
			gs.wordSpace, gs.charSpace = v[0], v[1]
		}
		if s, ok := lastString(operands); ok {
			p.moveText(0, -gs.leading)
			p.show(s)
		}
	case "re":
		if v, ok := nums(operands, 4); ok {
			p.rect(v[0], v[1], v[2], v[3])
		}
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
		for _, bb := range p.pending {
			p.objects.Rects = append(p.objects.Rects, RectObject{BBox: bb})
		}
		p.pending = p.pending[:0]
	case "n":
		p.pending = p.pending[:0]
	}
}

func (p *contentParser) moveText(tx, ty float64) {
	p.tlm = translate(tx, ty).mul(p.tlm)
	p.tm = p.tlm
}

// renderMatrix maps text space to user space for the current state.
func (p *contentParser) renderMatrix() matrix {
	gs := p.gs
	return matrix{gs.size * gs.hscale, 0, 0, gs.size, 0, gs.rise}.mul(p.tm).mul(gs.ctm)
}

func (p *contentParser) show(raw string) {
	gs := p.gs
	trm := p.renderMatrix()
	x0, y0 := trm.apply(0, 0)

	twoByte := gs.font != nil && gs.font.twoByte
	var advance float64
	for i := 0; i < gs.font.glyphs(raw); i++ {
		w := glyphAdvance*gs.size + gs.charSpace
		if !twoByte && raw[i] == ' ' {
			w += gs.wordSpace
		}
		advance += w * gs.hscale
	}
	p.tm = translate(advance, 0).mul(p.tm)

	text := gs.font.decode(raw)
	if strings.TrimSpace(text) == "" {
		return
	}
	x1, _ := p.renderMatrix().apply(0, 0)
	p.objects.Texts = append(p.objects.Texts, TextObject{
		Text:     text,
		Font:     gs.font.fontName(),
		FontSize: math.Hypot(trm[2], trm[3]),
		X:        x0,
		Y:        flipY(p.height, y0),
		Width:    math.Abs(x1 - x0),
	})
}

func (f *pageFont) fontName() string {
	if f == nil {
		return ""
	}
	return f.name
}

func (p *contentParser) rect(x, y, w, h float64) {
	ctm := p.gs.ctm
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, pt := range [][2]float64{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}} {
		tx, ty := ctm.apply(pt[0], pt[1])
		xs = append(xs, tx)
		ys = append(ys, ty)
	}
	minX, maxX := minMax(xs)
	minY, maxY := minMax(ys)
	p.pending = append(p.pending, BoundingBox{
		X0: minX,
		Y0: flipY(p.height, maxY),
		X1: maxX,
		Y1: flipY(p.height, minY),
	})
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
