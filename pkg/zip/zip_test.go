package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestArchiveAssetsRoundTrip(t *testing.T) {
	data := ArchiveAssets([]Asset{
		{Filename: "first", MIME: "image/png", Data: []byte("png-bytes")},
		{Filename: "second.mp4", MIME: "video/mp4", Data: []byte("mp4-bytes")},
	})
	if len(data) == 0 {
		t.Fatal("empty archive")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unreadable archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("file count = %d, want 2", len(zr.File))
	}
	if !strings.HasPrefix(zr.File[0].Name, "first.") {
		t.Fatalf("extension not derived from mime: %s", zr.File[0].Name)
	}
	if zr.File[1].Name != "second.mp4" {
		t.Fatalf("explicit filename changed: %s", zr.File[1].Name)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "png-bytes" {
		t.Fatalf("entry bytes = %q", got)
	}
}

func TestFilenameForUnknownMIME(t *testing.T) {
	if got := filenameFor(Asset{Filename: "blob", MIME: "application/x-weird"}); got != "blob" {
		t.Fatalf("got %s, want name untouched", got)
	}
}
