package browser

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// orderedFS serves directories in insertion order, unlike fstest.MapFS.
type orderedFS struct {
	dirs  map[string][]fakeEntry
	files map[string][]byte
	fail  map[string]error
}

type fakeEntry struct {
	name string
	dir  bool
	link bool
}

func (e fakeEntry) Name() string { return e.name }
func (e fakeEntry) IsDir() bool  { return e.dir }
func (e fakeEntry) Type() fs.FileMode {
	switch {
	case e.dir:
		return fs.ModeDir
	case e.link:
		return fs.ModeSymlink
	}
	return 0
}
func (e fakeEntry) Info() (fs.FileInfo, error) { return fakeInfo{e}, nil }

type fakeInfo struct{ e fakeEntry }

func (i fakeInfo) Name() string       { return i.e.name }
func (i fakeInfo) Size() int64        { return 0 }
func (i fakeInfo) Mode() fs.FileMode  { return i.e.Type() }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.e.dir }
func (i fakeInfo) Sys() any           { return nil }

func newOrderedFS() *orderedFS {
	return &orderedFS{
		dirs:  make(map[string][]fakeEntry),
		files: make(map[string][]byte),
		fail:  make(map[string]error),
	}
}

func (o *orderedFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if err := o.fail[path]; err != nil {
		return nil, err
	}
	entries, ok := o.dirs[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out, nil
}

func (o *orderedFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := o.dirs[path]; ok {
		return fakeInfo{fakeEntry{name: filepath.Base(path), dir: true}}, nil
	}
	if _, ok := o.files[path]; ok {
		return fakeInfo{fakeEntry{name: filepath.Base(path)}}, nil
	}
	return nil, fs.ErrNotExist
}

func (o *orderedFS) Open(path string) (io.ReadCloser, error) {
	data, ok := o.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestListKeepsOrderAndSkipsOtherFiles(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/media/usb"] = []fakeEntry{
		{name: "a.jpg"}, {name: "sub", dir: true}, {name: "readme.txt"}, {name: "doc.pdf"},
	}
	fsys.dirs["/media/usb/sub"] = nil

	b := New(fsys, nil)
	items, err := b.List(Root("/media/usb", "Storage device"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}

	want := []struct {
		label string
		kind  Kind
	}{
		{"a.jpg", KindImage},
		{"sub", KindDirectory},
		{"doc.pdf", KindPdf},
	}
	for i, w := range want {
		if items[i].Label != w.label || items[i].Kind != w.kind {
			t.Errorf("item %d: expected %s/%s, got %s/%s", i, w.label, w.kind, items[i].Label, items[i].Kind)
		}
		if items[i].Back {
			t.Errorf("item %d should not be a back item at the root", i)
		}
	}

	if items[0].Path != "/media/usb/a.jpg" || items[0].Icon.Path != "/media/usb/a.jpg" {
		t.Errorf("image item should carry its path, got %+v", items[0])
	}
	if items[1].Node == nil || items[1].Node.Path() != "/media/usb/sub" || items[1].Icon.Asset != raster.AssetFolder {
		t.Errorf("directory item should carry its node, got %+v", items[1])
	}
	if items[2].Icon.Asset != raster.AssetPDF || items[2].Icon.Raster != nil {
		t.Errorf("PDF without thumbnailer should use the PDF asset, got %+v", items[2].Icon)
	}
}

func TestListPrependsBackItem(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/media/usb/photos"] = []fakeEntry{{name: "b.png"}}

	root := Root("/media/usb", "Storage device")
	items, err := New(fsys, nil).List(root.Child("photos"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected back item plus one image, got %d", len(items))
	}
	back := items[0]
	if !back.Back || back.Node != root || back.Icon.Asset != raster.AssetBack {
		t.Errorf("unexpected back item %+v", back)
	}
	if back.Label != "Storage device" {
		t.Errorf("back item should be labelled with the parent name, got %q", back.Label)
	}
}

func TestListSkipsHiddenUnlessEnabled(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/m"] = []fakeEntry{{name: ".thumb.jpg"}, {name: "x.gif"}}

	b := New(fsys, nil)
	items, _ := b.List(Root("/m", ""))
	if len(items) != 1 || items[0].Label != "x.gif" {
		t.Errorf("hidden entry should be skipped, got %+v", items)
	}

	b.ShowHidden = true
	items, _ = b.List(Root("/m", ""))
	if len(items) != 2 {
		t.Errorf("expected hidden entry when enabled, got %d items", len(items))
	}
}

func TestListSniffsUnknownExtensions(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/m"] = []fakeEntry{{name: "scan"}, {name: "notes"}, {name: "missing"}}
	fsys.files["/m/scan"] = []byte("%PDF-1.4\n%rest")
	fsys.files["/m/notes"] = []byte{0x00, 0x01, 0x02, 0x03}

	items, err := New(fsys, nil).List(Root("/m", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Label != "scan" || items[0].Kind != KindPdf {
		t.Errorf("expected only the sniffed PDF, got %+v", items)
	}
}

func TestMimeByContent(t *testing.T) {
	tests := map[string]struct {
		head []byte
		kind Kind
	}{
		"tiff": {[]byte("II*\x00\x08\x00\x00\x00\x00\x00"), KindImage},
		"heic": {[]byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic"), KindImage},
		"pdf":  {[]byte("%PDF-1.7\n"), KindPdf},
		"png":  {[]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), KindImage},
		"zero": {[]byte{0x00, 0x01, 0x02, 0x03}, KindOther},
	}
	for name, tt := range tests {
		if got := KindOf(MimeByContent(tt.head)); got != tt.kind {
			t.Errorf("%s: sniffed %q as %s, want %s", name, MimeByContent(tt.head), got, tt.kind)
		}
	}
	if MimeByContent(nil) != "" {
		t.Error("empty content should give no type")
	}
}

func TestListSniffsCameraFormats(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/m"] = []fakeEntry{{name: "IMG_0001"}}
	fsys.files["/m/IMG_0001"] = []byte("MM\x00*\x00\x00\x00\x08\x00\x00")

	items, err := New(fsys, nil).List(Root("/m", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Kind != KindImage {
		t.Errorf("expected the TIFF to be listed as an image, got %+v", items)
	}
}

func TestListFollowsDirectorySymlinks(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/m"] = []fakeEntry{{name: "linked", link: true}}
	fsys.dirs["/m/linked"] = nil

	items, _ := New(fsys, nil).List(Root("/m", ""))
	if len(items) != 1 || items[0].Kind != KindDirectory {
		t.Errorf("symlink to a directory should list as a directory, got %+v", items)
	}
}

func TestListReadError(t *testing.T) {
	fsys := newOrderedFS()
	fsys.fail["/m"] = os.ErrPermission

	items, err := New(fsys, nil).List(Root("/m", ""))
	var readErr *DirectoryReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected DirectoryReadError, got %v", err)
	}
	if readErr.Path != "/m" || !errors.Is(err, os.ErrPermission) {
		t.Errorf("unexpected error %v", err)
	}
	if items != nil {
		t.Error("no items should be returned on error")
	}
}

func TestPDFThumbnails(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/m"] = []fakeEntry{{name: "good.pdf"}, {name: "bad.pdf"}}

	var sizes [][2]int
	thumbs := ThumbnailerFunc(func(path string, w, h int) (*raster.Raster, error) {
		sizes = append(sizes, [2]int{w, h})
		if strings.HasSuffix(path, "bad.pdf") {
			return nil, errors.New("corrupt")
		}
		return raster.New(4, 4, color.White), nil
	})

	items, err := New(fsys, thumbs).List(Root("/m", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Icon.Raster == nil {
		t.Error("good.pdf should carry its thumbnail")
	}
	if items[1].Icon.Raster != nil || items[1].Icon.Asset != raster.AssetPDF {
		t.Errorf("bad.pdf should fall back to the PDF asset, got %+v", items[1].Icon)
	}
	if sizes[0] != [2]int{595, 842} {
		t.Errorf("expected A4 render target, got %v", sizes[0])
	}

	ReleaseItems(items)
	if !items[0].Icon.Raster.Released() {
		t.Error("ReleaseItems should release thumbnails")
	}
}

func TestPDFThumbnailsKeptAtIconSize(t *testing.T) {
	fsys := newOrderedFS()
	fsys.dirs["/m"] = []fakeEntry{{name: "a.pdf"}, {name: "b.pdf"}, {name: "c.pdf"}}

	var renders []*raster.Raster
	thumbs := ThumbnailerFunc(func(path string, w, h int) (*raster.Raster, error) {
		r := raster.New(w, h, color.White)
		renders = append(renders, r)
		return r, nil
	})

	items, err := New(fsys, thumbs).List(Root("/m", ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		icon := item.Icon.Raster
		if icon == nil {
			t.Fatalf("%s should carry a thumbnail", item.Label)
		}
		if icon.Width() != 122 || icon.Height() != 122 {
			t.Errorf("%s keeps a %dx%d raster, expected 122x122", item.Label, icon.Width(), icon.Height())
		}
		if !renders[i].Released() {
			t.Errorf("full page render of %s should be released", item.Label)
		}
	}
	ReleaseItems(items)
}

func TestOSFileSystem(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := New(OSFileSystem{}, nil).List(Root(dir, "disk"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	_, err = New(nil, nil).List(Root(filepath.Join(dir, "nope"), ""))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestNodeChain(t *testing.T) {
	root := Root("/media/usb/", "Storage device")
	sub := root.Child("photos").Child("2024")

	if sub.Path() != "/media/usb/photos/2024" {
		t.Errorf("unexpected path %s", sub.Path())
	}
	if sub.Parent().Parent() != root || !root.IsRoot() || sub.IsRoot() {
		t.Error("parent chain broken")
	}
	if sub.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", sub.Depth())
	}
	if got := sub.Breadcrumb(" / "); got != "Storage device / photos / 2024" {
		t.Errorf("unexpected breadcrumb %q", got)
	}
	if Root("/mnt", "").Name() != "/mnt" {
		t.Error("root without a name should display its path")
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"image/jpeg":                KindImage,
		"image/svg+xml":             KindImage,
		"application/pdf":           KindPdf,
		"text/plain; charset=utf-8": KindOther,
		"":                          KindOther,
	}
	for in, want := range tests {
		if got := KindOf(in); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", in, got, want)
		}
	}
	if MimeByName("photo.JPG") != "image/jpeg" {
		t.Errorf("extension lookup should be case-insensitive, got %q", MimeByName("photo.JPG"))
	}
	if MimeByName("noext") != "" {
		t.Error("no extension should give no type")
	}
}
