package zip

import (
	"archive/zip"
	"bytes"
	"mime"
	"strings"
)

// Asset is one generated file destined for an archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets packs the assets into a single zip, deriving a file extension
// from each asset's MIME type when the filename carries none.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(filenameFor(asset))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func filenameFor(asset Asset) string {
	name := asset.Filename
	if name == "" {
		name = "asset"
	}
	if strings.Contains(name, ".") {
		return name
	}
	if exts, err := mime.ExtensionsByType(asset.MIME); err == nil && len(exts) > 0 {
		return name + exts[0]
	}
	switch asset.MIME {
	case "image/png":
		return name + ".png"
	case "video/mp4":
		return name + ".mp4"
	}
	return name
}
