package toss

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// inboundKind distinguishes a lone .pkt file from a ZIP-format weekly
// bundle, identified the same way AREAS/EDITOR software has always named
// them: a two-letter "pk" + "t" extension for a packet, or a weekday
// abbreviation ("su".."sa") for a bundle.
type inboundKind int

const (
	kindUnknown inboundKind = iota
	kindPackage
	kindBundle
)

// inboundFile is one file discovered under the inbound directory, tagged
// with the ordering key (modification time) the tosser processes it by.
type inboundFile struct {
	path    string
	kind    inboundKind
	modTime time.Time
}

// scanInbound lists every plausible packet/bundle in dir, oldest first.
// Anything of 64 bytes or less, not a regular file, or
// with an unrecognized extension is silently skipped — it isn't ours.
func scanInbound(dir string) ([]inboundFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []inboundFile
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() || info.Size() <= 64 {
			continue
		}

		kind := classify(e.Name())
		if kind == kindUnknown {
			continue
		}

		files = append(files, inboundFile{
			path:    filepath.Join(dir, e.Name()),
			kind:    kind,
			modTime: info.ModTime(),
		})
	}

	sortByModTime(files)
	return files, nil
}

// classify inspects a file name's extension to decide whether it is a
// single .pkt packet or a weekday-named ZIP bundle.
func classify(name string) inboundKind {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if len(ext) != 3 {
		return kindUnknown
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return kindUnknown
	}

	ext = strings.ToLower(ext)
	switch ext[:2] {
	case "pk":
		if ext[2:] == "t" {
			return kindPackage
		}
	case "su", "mo", "tu", "we", "th", "fr", "sa":
		return kindBundle
	}
	return kindUnknown
}

func sortByModTime(files []inboundFile) {
	for i := 1; i < len(files); i++ {
		for j := i; j > 0 && files[j].modTime.Before(files[j-1].modTime); j-- {
			files[j], files[j-1] = files[j-1], files[j]
		}
	}
}
