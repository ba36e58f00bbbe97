package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/mailcraft/internal/apperr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(filepath.Join(t.TempDir(), "assets"))
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func TestSaveAndPath(t *testing.T) {
	d := testDir(t)
	a, err := d.Save("logo.png", pngHeader)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.URL != "/assets/logo.png" {
		t.Errorf("URL = %q, want /assets/logo.png", a.URL)
	}
	if a.Size != int64(len(pngHeader)) {
		t.Errorf("Size = %d", a.Size)
	}
	abs, err := d.Path("logo.png")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(abs)
	if err != nil || string(data) != string(pngHeader) {
		t.Errorf("stored content = %q, %v", data, err)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	d := testDir(t)
	if _, err := d.Save("a.png", pngHeader); err != nil {
		t.Fatal(err)
	}
	_, err := d.Save("a.png", pngHeader)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second save err = %v, want ErrAlreadyExists", err)
	}
}

func TestSaveRejectsNonImages(t *testing.T) {
	d := testDir(t)
	cases := []struct {
		name string
		data []byte
	}{
		{"notes.txt", []byte("hello")},
		{"fake.png", []byte("plain text, not a png")},
		{"fake.svg", []byte("<html></html>")},
	}
	for _, tc := range cases {
		if _, err := d.Save(tc.name, tc.data); !errors.Is(err, ErrUnsupported) {
			t.Errorf("Save(%q) err = %v, want ErrUnsupported", tc.name, err)
		}
	}
}

func TestSaveAcceptsSVGAndJPEG(t *testing.T) {
	d := testDir(t)
	if _, err := d.Save("icon.svg", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)); err != nil {
		t.Errorf("svg: %v", err)
	}
	if _, err := d.Save("photo.jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")); err != nil {
		t.Errorf("jpeg: %v", err)
	}
}

func TestSaveTooLarge(t *testing.T) {
	d := testDir(t)
	big := make([]byte, MaxSize+1)
	copy(big, pngHeader)
	if _, err := d.Save("big.png", big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	d := testDir(t)
	for _, name := range []string{"", "../x.png", "a/b.png", ".."} {
		if _, err := d.Path(name); err == nil {
			t.Errorf("Path(%q) should fail", name)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("../../my logo (1).png"); got != "my_logo__1_.png" {
		t.Errorf("SanitizeName = %q", got)
	}
	if got := SanitizeName("/"); got == "" || strings.Contains(got, "/") {
		t.Errorf("SanitizeName(/) = %q, want random name", got)
	}
}

func TestExtForMIME(t *testing.T) {
	if got := ExtForMIME("image/png; charset=binary"); got != ".png" {
		t.Errorf("ExtForMIME = %q", got)
	}
	if got := ExtForMIME("application/pdf"); got != "" {
		t.Errorf("pdf should not map, got %q", got)
	}
}
