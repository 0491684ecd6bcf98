package biff

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// HexCharDump writes dlen bytes of data starting at ofs in hex and char
// format, 16 bytes per line. NUL shows as '~' and other unprintable bytes
// as '?'. Line offsets start at base unless unnumbered is set.
func HexCharDump(data []byte, ofs, dlen, base int, fout io.Writer, unnumbered bool) {
	endpos := ofs + dlen
	if endpos > len(data) {
		endpos = len(data)
	}
	for pos := ofs; pos < endpos; {
		endsub := pos + 16
		if endsub > endpos {
			endsub = endpos
		}
		var hexd, chard strings.Builder
		for _, c := range data[pos:endsub] {
			fmt.Fprintf(&hexd, "%02x ", c)
			switch {
			case c == 0:
				chard.WriteByte('~')
			case c >= ' ' && c <= '~':
				chard.WriteByte(c)
			default:
				chard.WriteByte('?')
			}
		}
		numPrefix := ""
		if !unnumbered {
			numPrefix = fmt.Sprintf("%5d: ", base+pos-ofs)
		}
		fmt.Fprintf(fout, "%s     %-48s %s\n", numPrefix, hexd.String(), chard.String())
		pos = endsub
	}
}

// Dump writes every record of the stream in char & hex format for debugging.
//
// unnumbered: If true, omit offsets (for meaningful diffs).
func (s *Stream) Dump(outfile io.Writer, unnumbered bool) {
	position := 0
	for _, rec := range s.records {
		if unnumbered {
			fmt.Fprintf(outfile, "%04x %s len = %04x (%d)\n", rec.Sid, RecordName(rec.Sid), len(rec.Data), len(rec.Data))
		} else {
			fmt.Fprintf(outfile, "%8d: %04x %s len = %04x (%d)\n", position, rec.Sid, RecordName(rec.Sid), len(rec.Data), len(rec.Data))
		}
		HexCharDump(rec.Data, 0, len(rec.Data), position+4, outfile, unnumbered)
		position += 4 + len(rec.Data)
	}
}

// CountRecords summarises the stream's records.
// It writes one "record_name count" line per record type, sorted by name.
func (s *Stream) CountRecords(outfile io.Writer) {
	counts := make(map[string]int)
	for _, rec := range s.records {
		counts[RecordName(rec.Sid)]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(outfile, "%8d %s\n", counts[name], name)
	}
}
