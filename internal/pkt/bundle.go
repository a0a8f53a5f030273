package pkt

import (
	"archive/zip"
	"io"
	"strings"
)

// ReadBundle opens a ZIP archive and decodes every entry whose name ends
// in ".pkt" (in any letter case) into a Packet. Other entries are skipped
// silently.
func ReadBundle(r io.ReaderAt, size int64) ([]*Packet, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	var packets []*Packet

	for _, f := range zr.File {
		if !strings.EqualFold(fileExt(f.Name), "pkt") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}

		pkt, err := Read(rc)
		closeErr := rc.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, closeErr
		}

		packets = append(packets, pkt)
	}

	return packets, nil
}

func fileExt(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}
