// Package zip assembles downloaded media into the categorized archive the
// asset pipeline hands back to clients.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Folder names are fixed; clients rely on them when unpacking.
const (
	FolderImages      = "images"
	FolderVideos      = "videos"
	FolderBackgrounds = "backgrounds"
)

type entry struct {
	name string
	data []byte
}

// Bundle accumulates files under the three fixed groupings and serializes
// them into a single zip. The zero value is not usable; call NewBundle.
type Bundle struct {
	folders map[string][]entry
}

// NewBundle returns an empty bundle with all three groupings present.
func NewBundle() *Bundle {
	return &Bundle{
		folders: map[string][]entry{
			FolderImages:      nil,
			FolderVideos:      nil,
			FolderBackgrounds: nil,
		},
	}
}

// AddImage stores jpeg bytes for the keyword at the given 0-based position.
func (b *Bundle) AddImage(index int, keyword string, data []byte) {
	b.add(FolderImages, EntryName(index, keyword)+".jpg", data)
}

// AddVideo stores mp4 bytes for the keyword at the given 0-based position.
func (b *Bundle) AddVideo(index int, keyword string, data []byte) {
	b.add(FolderVideos, EntryName(index, keyword)+".mp4", data)
}

// AddBackground stores jpeg bytes for the keyword at the given 0-based position.
func (b *Bundle) AddBackground(index int, keyword string, data []byte) {
	b.add(FolderBackgrounds, EntryName(index, keyword)+"_bg.jpg", data)
}

func (b *Bundle) add(folder, name string, data []byte) {
	b.folders[folder] = append(b.folders[folder], entry{name: name, data: data})
}

// Len reports the total number of files across all groupings.
func (b *Bundle) Len() int {
	n := 0
	for _, entries := range b.folders {
		n += len(entries)
	}
	return n
}

// Build serializes the bundle. Folder entries are written even when a
// grouping holds no files, matching the layout clients expect.
func (b *Bundle) Build() ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, folder := range []string{FolderImages, FolderVideos, FolderBackgrounds} {
		if _, err := zw.Create(folder + "/"); err != nil {
			return nil, fmt.Errorf("zip: create folder %s: %w", folder, err)
		}
		for _, e := range b.folders[folder] {
			w, err := zw.Create(folder + "/" + e.name)
			if err != nil {
				return nil, fmt.Errorf("zip: create entry %s: %w", e.name, err)
			}
			if _, err := w.Write(e.data); err != nil {
				return nil, fmt.Errorf("zip: write entry %s: %w", e.name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// EntryName builds the positional file stem for a keyword: the 1-based index
// followed by the keyword folded to lowercase with every character outside
// [a-z0-9] replaced by underscores.
func EntryName(index int, keyword string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(keyword) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return fmt.Sprintf("%d_%s", index+1, sb.String())
}
