package fonts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// subsetTables are copied into a subset. GSUB, GPOS and GDEF are dropped:
// text is shaped before encoding, so the PDF consumer never substitutes.
var subsetTables = []string{"cmap", "cvt ", "fpgm", "gasp", "head", "hhea", "name", "OS/2", "post", "prep"}

// SubsetTrueType removes the outlines of every glyph not in used. Glyph IDs
// are preserved so that Identity-H encoded strings stay valid; composite
// glyph components are kept. Fonts without glyf outlines are returned
// unchanged.
func SubsetTrueType(data []byte, used map[int]bool) ([]byte, error) {
	p := &ttParser{data: data}
	if err := p.parseDirectory(); err != nil {
		return nil, err
	}
	for _, tag := range []string{"glyf", "loca", "head", "maxp", "hmtx", "hhea"} {
		if !p.has(tag) {
			return data, nil
		}
	}

	head, err := p.table("head")
	if err != nil {
		return nil, err
	}
	maxp, err := p.table("maxp")
	if err != nil {
		return nil, err
	}
	if len(head) < 54 || len(maxp) < 6 {
		return nil, fmt.Errorf("truncated head or maxp")
	}
	longLoca := int16(binary.BigEndian.Uint16(head[50:52])) == 1
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:6]))

	keep := map[int]bool{0: true}
	for gid := range used {
		if gid >= 0 && gid < numGlyphs {
			keep[gid] = true
		}
	}
	if err := p.addComponents(keep, numGlyphs, longLoca); err != nil {
		return nil, fmt.Errorf("compute closure: %w", err)
	}

	last := 0
	for gid := range keep {
		if gid > last {
			last = gid
		}
	}
	newNum := last + 1

	glyf, loca, err := p.rebuildGlyf(keep, newNum, longLoca)
	if err != nil {
		return nil, err
	}
	hmtx, err := p.rebuildHmtx(newNum)
	if err != nil {
		return nil, err
	}

	w := &ttWriter{}
	w.add("glyf", glyf)
	w.add("loca", loca)
	w.add("hmtx", hmtx)

	newMaxp := append([]byte(nil), maxp...)
	binary.BigEndian.PutUint16(newMaxp[4:], uint16(newNum))
	w.add("maxp", newMaxp)

	for _, tag := range subsetTables {
		if !p.has(tag) {
			continue
		}
		t, err := p.table(tag)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "head":
			// loca is always rewritten in the long format
			t = append([]byte(nil), t...)
			binary.BigEndian.PutUint16(t[50:], 1)
		case "hhea":
			if len(t) >= 36 {
				t = append([]byte(nil), t...)
				binary.BigEndian.PutUint16(t[34:], uint16(newNum))
			}
		}
		w.add(tag, t)
	}
	return w.bytes(), nil
}

type ttParser struct {
	data   []byte
	tables map[string][2]uint32 // offset, length
}

func (p *ttParser) parseDirectory() error {
	if len(p.data) < 12 {
		return fmt.Errorf("invalid font header")
	}
	n := int(binary.BigEndian.Uint16(p.data[4:6]))
	p.tables = make(map[string][2]uint32, n)
	for i := 0; i < n; i++ {
		off := 12 + 16*i
		if off+16 > len(p.data) {
			return fmt.Errorf("table directory truncated")
		}
		tag := string(p.data[off : off+4])
		p.tables[tag] = [2]uint32{
			binary.BigEndian.Uint32(p.data[off+8 : off+12]),
			binary.BigEndian.Uint32(p.data[off+12 : off+16]),
		}
	}
	return nil
}

func (p *ttParser) has(tag string) bool {
	_, ok := p.tables[tag]
	return ok
}

func (p *ttParser) table(tag string) ([]byte, error) {
	e, ok := p.tables[tag]
	if !ok {
		return nil, fmt.Errorf("table %s not found", tag)
	}
	end := uint64(e[0]) + uint64(e[1])
	if end > uint64(len(p.data)) {
		return nil, fmt.Errorf("table %s out of bounds", tag)
	}
	return p.data[e[0]:end], nil
}

func (p *ttParser) locator(longLoca bool) (func(gid int) uint32, []byte, error) {
	loca, err := p.table("loca")
	if err != nil {
		return nil, nil, err
	}
	glyf, err := p.table("glyf")
	if err != nil {
		return nil, nil, err
	}
	return func(gid int) uint32 {
		if longLoca {
			if gid*4+4 > len(loca) {
				return 0
			}
			return binary.BigEndian.Uint32(loca[gid*4:])
		}
		if gid*2+2 > len(loca) {
			return 0
		}
		return uint32(binary.BigEndian.Uint16(loca[gid*2:])) * 2
	}, glyf, nil
}

// addComponents extends keep with the components of composite glyphs.
func (p *ttParser) addComponents(keep map[int]bool, numGlyphs int, longLoca bool) error {
	loc, glyf, err := p.locator(longLoca)
	if err != nil {
		return err
	}
	queue := make([]int, 0, len(keep))
	for gid := range keep {
		queue = append(queue, gid)
	}
	for len(queue) > 0 {
		gid := queue[0]
		queue = queue[1:]
		start, end := loc(gid), loc(gid+1)
		if start >= end || end > uint32(len(glyf)) || start+10 > end {
			continue
		}
		if int16(binary.BigEndian.Uint16(glyf[start:])) >= 0 {
			continue
		}
		off := start + 10
		for off+4 <= end {
			flags := binary.BigEndian.Uint16(glyf[off:])
			sub := int(binary.BigEndian.Uint16(glyf[off+2:]))
			if sub < numGlyphs && !keep[sub] {
				keep[sub] = true
				queue = append(queue, sub)
			}
			off += 4
			if flags&0x0001 != 0 { // ARG_1_AND_2_ARE_WORDS
				off += 4
			} else {
				off += 2
			}
			switch {
			case flags&0x0008 != 0: // WE_HAVE_A_SCALE
				off += 2
			case flags&0x0040 != 0: // WE_HAVE_AN_X_AND_Y_SCALE
				off += 4
			case flags&0x0080 != 0: // WE_HAVE_A_TWO_BY_TWO
				off += 8
			}
			if flags&0x0020 == 0 { // MORE_COMPONENTS
				break
			}
		}
	}
	return nil
}

func (p *ttParser) rebuildGlyf(keep map[int]bool, numGlyphs int, longLoca bool) ([]byte, []byte, error) {
	loc, glyf, err := p.locator(longLoca)
	if err != nil {
		return nil, nil, err
	}
	var newGlyf, newLoca bytes.Buffer
	offset := uint32(0)
	for gid := 0; gid < numGlyphs; gid++ {
		binary.Write(&newLoca, binary.BigEndian, offset)
		if !keep[gid] {
			continue
		}
		start, end := loc(gid), loc(gid+1)
		if start < end && end <= uint32(len(glyf)) {
			newGlyf.Write(glyf[start:end])
			offset += end - start
			// glyph data stays 4-byte aligned
			for offset%4 != 0 {
				newGlyf.WriteByte(0)
				offset++
			}
		}
	}
	binary.Write(&newLoca, binary.BigEndian, offset)
	return newGlyf.Bytes(), newLoca.Bytes(), nil
}

// rebuildHmtx writes an explicit advance/lsb pair for every kept glyph.
func (p *ttParser) rebuildHmtx(numGlyphs int) ([]byte, error) {
	hhea, err := p.table("hhea")
	if err != nil {
		return nil, err
	}
	if len(hhea) < 36 {
		return nil, fmt.Errorf("truncated hhea")
	}
	numMetrics := int(binary.BigEndian.Uint16(hhea[34:36]))
	hmtx, err := p.table("hmtx")
	if err != nil {
		return nil, err
	}
	if numMetrics == 0 || len(hmtx) < numMetrics*4 {
		return nil, fmt.Errorf("truncated hmtx")
	}
	var out bytes.Buffer
	for gid := 0; gid < numGlyphs; gid++ {
		var adv, lsb uint16
		if gid < numMetrics {
			adv = binary.BigEndian.Uint16(hmtx[gid*4:])
			lsb = binary.BigEndian.Uint16(hmtx[gid*4+2:])
		} else {
			adv = binary.BigEndian.Uint16(hmtx[(numMetrics-1)*4:])
			if off := numMetrics*4 + (gid-numMetrics)*2; off+2 <= len(hmtx) {
				lsb = binary.BigEndian.Uint16(hmtx[off:])
			}
		}
		binary.Write(&out, binary.BigEndian, adv)
		binary.Write(&out, binary.BigEndian, lsb)
	}
	return out.Bytes(), nil
}

type ttWriter struct {
	tables []ttTable
}

type ttTable struct {
	tag  string
	data []byte
}

func (w *ttWriter) add(tag string, data []byte) {
	w.tables = append(w.tables, ttTable{tag, data})
}

func (w *ttWriter) bytes() []byte {
	sort.Slice(w.tables, func(i, j int) bool { return w.tables[i].tag < w.tables[j].tag })
	n := len(w.tables)

	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x01, 0x00, 0x00})
	selector := 0
	for (1 << (selector + 1)) <= n {
		selector++
	}
	searchRange := (1 << selector) * 16
	binary.Write(&buf, binary.BigEndian, uint16(n))
	binary.Write(&buf, binary.BigEndian, uint16(searchRange))
	binary.Write(&buf, binary.BigEndian, uint16(selector))
	binary.Write(&buf, binary.BigEndian, uint16(n*16-searchRange))

	headOffset := -1
	offset := 12 + 16*n
	for _, t := range w.tables {
		buf.WriteString(t.tag)
		sum := checksum(t.data)
		if t.tag == "head" && len(t.data) >= 12 {
			zeroed := append([]byte(nil), t.data...)
			copy(zeroed[8:12], []byte{0, 0, 0, 0})
			sum = checksum(zeroed)
			headOffset = offset
		}
		binary.Write(&buf, binary.BigEndian, sum)
		binary.Write(&buf, binary.BigEndian, uint32(offset))
		binary.Write(&buf, binary.BigEndian, uint32(len(t.data)))
		offset += (len(t.data) + 3) &^ 3
	}
	for _, t := range w.tables {
		buf.Write(t.data)
		for pad := (4 - len(t.data)%4) % 4; pad > 0; pad-- {
			buf.WriteByte(0)
		}
	}

	out := buf.Bytes()
	if headOffset >= 0 {
		copy(out[headOffset+8:headOffset+12], []byte{0, 0, 0, 0})
		binary.BigEndian.PutUint32(out[headOffset+8:], 0xB1B0AFBA-checksum(out))
	}
	return out
}

func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}
