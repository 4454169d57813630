package fonts

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf16"
)

// Encode returns the Identity-H byte string for glyphs (two bytes per glyph,
// big endian) and records the glyphs as used.
func (f *Font) Encode(glyphs []Glyph) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, 0, len(glyphs)*2)
	for _, g := range glyphs {
		out = append(out, byte(g.ID>>8), byte(g.ID))
		if _, ok := f.used[g.ID]; !ok || (len(f.used[g.ID]) == 0 && len(g.Text) > 0) {
			f.used[g.ID] = append([]rune(nil), g.Text...)
		}
	}
	return out
}

// UsedGlyphs returns the glyph IDs passed to Encode so far, sorted. Glyph 0
// is always included.
func (f *Font) UsedGlyphs() []uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []uint16{0}
	for gid := range f.used {
		if gid != 0 {
			out = append(out, gid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WidthRun is one "c [w1 w2 ...]" entry of a CIDFont /W array.
type WidthRun struct {
	First  uint16
	Widths []int
}

// WidthRuns groups the used glyphs into runs of consecutive IDs. Glyphs whose
// width equals the default are left out.
func (f *Font) WidthRuns() []WidthRun {
	dw := f.DefaultWidth()
	var runs []WidthRun
	for _, gid := range f.UsedGlyphs() {
		w := f.Width(gid)
		if w == dw {
			continue
		}
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if int(last.First)+len(last.Widths) == int(gid) {
				last.Widths = append(last.Widths, w)
				continue
			}
		}
		runs = append(runs, WidthRun{First: gid, Widths: []int{w}})
	}
	return runs
}

// ToUnicode builds a CMap stream mapping used glyphs back to the text they
// were shaped from.
func (f *Font) ToUnicode() []byte {
	f.mu.Lock()
	type entry struct {
		gid  uint16
		text []rune
	}
	entries := make([]entry, 0, len(f.used))
	for gid, text := range f.used {
		if len(text) > 0 {
			entries = append(entries, entry{gid, text})
		}
	}
	f.mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].gid < entries[j].gid })

	var b bytes.Buffer
	b.WriteString("/CIDInit /ProcSet findresource begin\n")
	b.WriteString("12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	for start := 0; start < len(entries); start += 100 {
		end := start + 100
		if end > len(entries) {
			end = len(entries)
		}
		fmt.Fprintf(&b, "%d beginbfchar\n", end-start)
		for _, e := range entries[start:end] {
			fmt.Fprintf(&b, "<%04X> <", e.gid)
			for _, u := range utf16.Encode(e.text) {
				fmt.Fprintf(&b, "%04X", u)
			}
			b.WriteString(">\n")
		}
		b.WriteString("endbfchar\n")
	}
	b.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return b.Bytes()
}

// Program returns the font program to embed: a subset holding only the used
// glyphs when subsetting succeeds, otherwise the original data.
func (f *Font) Program() []byte {
	used := make(map[int]bool)
	for _, gid := range f.UsedGlyphs() {
		used[int(gid)] = true
	}
	sub, err := SubsetTrueType(f.Data, used)
	if err != nil || len(sub) == 0 || len(sub) >= len(f.Data) {
		return f.Data
	}
	return sub
}
