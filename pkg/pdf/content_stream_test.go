package pdf

import (
	"math"
	"testing"
)

const sampleCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
3 beginbfchar
<0003> <0020>
<0024> <0041>
<0060> <D83DDE00>
endbfchar
2 beginbfrange
<0044> <0046> <0061>
<0050> <0051> [<00E9> <4E2D>]
endbfrange
endcmap
end end`

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestLexer(t *testing.T) {
	l := &lexer{data: []byte(`(a\(b\)\n\101) (x(y)z) <48656C6C6F> <414> /F1 -12.5 [ ] << >> % comment
Tj`)}

	want := []token{
		{kind: tokString, text: "a(b)\nA"},
		{kind: tokString, text: "x(y)z"},
		{kind: tokString, text: "Hello"},
		{kind: tokString, text: "A@"},
		{kind: tokName, text: "F1"},
		{kind: tokNumber, num: -12.5},
		{kind: tokArrayStart},
		{kind: tokArrayEnd},
		{kind: tokDictStart},
		{kind: tokDictEnd},
		{kind: tokOperator, text: "Tj"},
	}
	for i, w := range want {
		got, ok := l.next()
		if !ok {
			t.Fatalf("token %d: unexpected end of input", i)
		}
		if got.kind != w.kind {
			t.Fatalf("token %d: expected kind %d, got %d (%q)", i, w.kind, got.kind, got.text)
		}
		if w.kind == tokNumber {
			if got.num != w.num {
				t.Errorf("token %d: expected %v, got %v", i, w.num, got.num)
			}
		} else if w.text != "" && got.text != w.text {
			t.Errorf("token %d: expected %q, got %q", i, w.text, got.text)
		}
	}
	if tok, ok := l.next(); ok {
		t.Errorf("Expected end of input, got %+v", tok)
	}
}

func TestParseContentText(t *testing.T) {
	fonts := map[string]*pageFont{"F1": {name: "Helvetica"}}
	objs := parseContent([]byte("BT /F1 24 Tf 10 20 Td (Hello) Tj ET\n5 10 100 50 re S"), 200, fonts)

	if len(objs.Texts) != 1 {
		t.Fatalf("Expected 1 text run, got %d", len(objs.Texts))
	}
	text := objs.Texts[0]
	if text.Text != "Hello" || text.Font != "Helvetica" {
		t.Errorf("Unexpected text run %+v", text)
	}
	if !near(text.X, 10) || !near(text.Y, 180) {
		t.Errorf("Expected text at (10,180), got (%v,%v)", text.X, text.Y)
	}
	if !near(text.FontSize, 24) {
		t.Errorf("Expected font size 24, got %v", text.FontSize)
	}
	if !near(text.Width, 60) {
		t.Errorf("Expected width 60, got %v", text.Width)
	}

	if len(objs.Rects) != 1 {
		t.Fatalf("Expected 1 rectangle, got %d", len(objs.Rects))
	}
	bb := objs.Rects[0].BBox
	if !near(bb.X0, 5) || !near(bb.Y0, 140) || !near(bb.X1, 105) || !near(bb.Y1, 190) {
		t.Errorf("Unexpected rectangle %+v", bb)
	}
}

func TestParseContentTextPositioning(t *testing.T) {
	fonts := map[string]*pageFont{"F1": {}}
	content := `BT /F1 10 Tf 14 TL 0 100 Td [(Hello) -300 (World) 20 (!)] TJ T* (next) Tj
1 0 0 1 50 50 Tm (moved) ' ET`
	objs := parseContent([]byte(content), 200, fonts)

	if len(objs.Texts) != 3 {
		t.Fatalf("Expected 3 text runs, got %d", len(objs.Texts))
	}
	if got := objs.Texts[0].Text; got != "Hello World!" {
		t.Errorf("Expected kerned gap to become a space, got %q", got)
	}
	if !near(objs.Texts[1].X, 0) || !near(objs.Texts[1].Y, 114) {
		t.Errorf("Expected T* to move down one line, got (%v,%v)", objs.Texts[1].X, objs.Texts[1].Y)
	}
	if !near(objs.Texts[2].X, 50) || !near(objs.Texts[2].Y, 164) {
		t.Errorf("Expected ' to move below the Tm origin, got (%v,%v)", objs.Texts[2].X, objs.Texts[2].Y)
	}
}

func TestParseContentGraphicsState(t *testing.T) {
	objs := parseContent([]byte("q 2 0 0 2 50 60 cm 0 0 10 10 re f Q 0 0 10 10 re f 0 0 5 5 re W n"), 100, nil)

	if len(objs.Rects) != 2 {
		t.Fatalf("Expected 2 rectangles, got %d", len(objs.Rects))
	}
	scaled := objs.Rects[0].BBox
	if !near(scaled.X0, 50) || !near(scaled.X1, 70) || !near(scaled.Y0, 20) || !near(scaled.Y1, 40) {
		t.Errorf("Unexpected transformed rectangle %+v", scaled)
	}
	plain := objs.Rects[1].BBox
	if !near(plain.X0, 0) || !near(plain.X1, 10) || !near(plain.Y0, 90) || !near(plain.Y1, 100) {
		t.Errorf("Expected Q to restore the matrix, got %+v", plain)
	}
}

func TestParseContentSkipsInlineImage(t *testing.T) {
	content := "BI /W 2 /H 1 /BPC 8 /CS /G ID \xff\x00 EI\nBT /F1 10 Tf (after) Tj ET"
	objs := parseContent([]byte(content), 100, nil)
	if len(objs.Texts) != 1 || objs.Texts[0].Text != "after" {
		t.Fatalf("Expected text after the inline image, got %+v", objs.Texts)
	}
}

func TestToUnicode(t *testing.T) {
	cm := parseToUnicode([]byte(sampleCMap))

	if cm.codeLen != 2 {
		t.Errorf("Expected 2-byte codes, got %d", cm.codeLen)
	}
	if cm.count() != 8 {
		t.Errorf("Expected 8 mapped codes, got %d", cm.count())
	}

	cases := map[uint32]string{
		0x0003: " ",
		0x0024: "A",
		0x0045: "b",
		0x0046: "c",
		0x0050: "é",
		0x0051: "中",
		0x0060: "\U0001F600",
	}
	for c, want := range cases {
		got, ok := cm.lookup(c)
		if !ok || got != want {
			t.Errorf("lookup(%#04x) = %q, %v; expected %q", c, got, ok, want)
		}
	}
	if _, ok := cm.lookup(0x0047); ok {
		t.Error("Expected 0x0047 to be unmapped")
	}

	raw := []byte{0x00, 0x24, 0x00, 0x45, 0x00, 0x03, 0x00, 0x51, 0x00, 0x47, 0x12, 0x34}
	if got := cm.decode(raw); got != "Ab 中G" {
		t.Errorf("Unexpected decoded text %q", got)
	}
}

func TestPageFontDecode(t *testing.T) {
	var missing *pageFont
	if got := missing.decode("\x93hi\x94"); got != "“hi”" {
		t.Errorf("Expected WinAnsi decoding, got %q", got)
	}
	wide := &pageFont{twoByte: true}
	if got := wide.decode("\x00A\x00B"); got != "AB" {
		t.Errorf("Expected two-byte decoding, got %q", got)
	}

	mapped := &pageFont{twoByte: true, toUnicode: parseToUnicode([]byte(sampleCMap))}
	objs := parseContent([]byte("BT /F2 12 Tf <00240045> Tj ET"), 100, map[string]*pageFont{"F2": mapped})
	if len(objs.Texts) != 1 {
		t.Fatalf("Expected 1 text run, got %d", len(objs.Texts))
	}
	if objs.Texts[0].Text != "Ab" {
		t.Errorf("Expected ToUnicode text, got %q", objs.Texts[0].Text)
	}
	if !near(objs.Texts[0].Width, 12) {
		t.Errorf("Expected two glyphs of width 6, got %v", objs.Texts[0].Width)
	}
}

func TestPdfcpuBackend(t *testing.T) {
	doc, err := OpenWithPdfcpu(samplePDF)
	if err != nil {
		t.Skipf("pdfcpu rejected the sample: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 2 {
		t.Fatalf("Expected 2 pages, got %d", doc.PageCount())
	}
	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	if page.GetWidth() != 200 || page.GetHeight() != 100 {
		t.Errorf("Expected 200x100 page, got %.0fx%.0f", page.GetWidth(), page.GetHeight())
	}
	if text := page.ExtractText(); text != "Hello kiosk" {
		t.Errorf("Expected page text %q, got %q", "Hello kiosk", text)
	}
	if _, err := doc.GetPage(2); err == nil {
		t.Error("Expected an out of range error")
	}

	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := doc.GetPage(0); err == nil {
		t.Error("GetPage on a closed document should fail")
	}
}
