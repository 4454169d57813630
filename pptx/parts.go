package pptx

import (
	"strconv"

	"github.com/wudi/docforge/ooxml"
)

// Slide IDs start at 256; layout IDs above 2^31.
const (
	firstSlideID        = 256
	firstMasterID int64 = 2147483648
	firstLayoutID int64 = 2147483649
)

func presentation(masterRel string, slideRels []string) []byte {
	w := ooxml.NewWriter()
	w.Open("p:presentation",
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:p", nsPresentation,
		"saveSubsetFonts", "1")
	w.Open("p:sldMasterIdLst").
		Empty("p:sldMasterId", "id", strconv.FormatInt(firstMasterID, 10), "r:id", masterRel).
		Close()
	w.Open("p:sldIdLst")
	for i, rid := range slideRels {
		w.Empty("p:sldId", "id", strconv.Itoa(firstSlideID+i), "r:id", rid)
	}
	w.Close()
	w.Empty("p:sldSz", "cx", emu(SlideWidth), "cy", emu(SlideHeight))
	w.Empty("p:notesSz", "cx", emu(SlideHeight), "cy", emu(SlideWidth*3/4))
	w.Empty("p:defaultTextStyle")
	return w.Bytes()
}

// emptyTree writes a shape tree that holds only its group properties.
func emptyTree(w *ooxml.Writer) {
	w.Open("p:spTree")
	w.Open("p:nvGrpSpPr").
		Empty("p:cNvPr", "id", "1", "name", "").
		Empty("p:cNvGrpSpPr").
		Empty("p:nvPr").
		Close()
	w.Empty("p:grpSpPr")
	w.Close()
}

func slideMaster() []byte {
	w := ooxml.NewWriter()
	w.Open("p:sldMaster",
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:p", nsPresentation)
	w.Open("p:cSld")
	w.Open("p:bg").Open("p:bgRef", "idx", "1001").Empty("a:schemeClr", "val", "bg1").Close().Close()
	emptyTree(w)
	w.Close()
	w.Empty("p:clrMap",
		"bg1", "lt1", "tx1", "dk1", "bg2", "lt2", "tx2", "dk2",
		"accent1", "accent1", "accent2", "accent2", "accent3", "accent3",
		"accent4", "accent4", "accent5", "accent5", "accent6", "accent6",
		"hlink", "hlink", "folHlink", "folHlink")
	w.Open("p:sldLayoutIdLst").
		Empty("p:sldLayoutId", "id", strconv.FormatInt(firstLayoutID, 10), "r:id", "rId1").
		Close()
	return w.Bytes()
}

func slideLayout() []byte {
	w := ooxml.NewWriter()
	w.Open("p:sldLayout",
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:p", nsPresentation,
		"type", "blank", "preserve", "1")
	w.Open("p:cSld", "name", "Blank")
	emptyTree(w)
	w.Close()
	w.Open("p:clrMapOvr").Empty("a:masterClrMapping").Close()
	return w.Bytes()
}

func theme() []byte {
	w := ooxml.NewWriter()
	w.Open("a:theme", "xmlns:a", ooxml.NSDrawingML, "name", "docforge")
	w.Open("a:themeElements")

	w.Open("a:clrScheme", "name", "docforge")
	w.Open("a:dk1").Empty("a:sysClr", "val", "windowText", "lastClr", "000000").Close()
	w.Open("a:lt1").Empty("a:sysClr", "val", "window", "lastClr", "FFFFFF").Close()
	for _, c := range []struct{ name, hex string }{
		{"dk2", darkHex}, {"lt2", "E7E6E6"},
		{"accent1", darkHex}, {"accent2", accentHex}, {"accent3", "A5A5A5"},
		{"accent4", "5B9BD5"}, {"accent5", "70AD47"}, {"accent6", "C00000"},
		{"hlink", "0563C1"}, {"folHlink", "954F72"},
	} {
		w.Open("a:" + c.name).Empty("a:srgbClr", "val", c.hex).Close()
	}
	w.Close()

	w.Open("a:fontScheme", "name", "docforge")
	for _, tag := range []string{"a:majorFont", "a:minorFont"} {
		w.Open(tag).
			Empty("a:latin", "typeface", "Calibri").
			Empty("a:ea", "typeface", "").
			Empty("a:cs", "typeface", "Arial").
			Close()
	}
	w.Close()

	w.Open("a:fmtScheme", "name", "docforge")
	phFill := func() { w.Open("a:solidFill").Empty("a:schemeClr", "val", "phClr").Close() }
	w.Open("a:fillStyleLst")
	for i := 0; i < 3; i++ {
		phFill()
	}
	w.Close()
	w.Open("a:lnStyleLst")
	for _, width := range []string{"6350", "12700", "19050"} {
		w.Open("a:ln", "w", width)
		phFill()
		w.Close()
	}
	w.Close()
	w.Open("a:effectStyleLst")
	for i := 0; i < 3; i++ {
		w.Open("a:effectStyle").Empty("a:effectLst").Close()
	}
	w.Close()
	w.Open("a:bgFillStyleLst")
	for i := 0; i < 3; i++ {
		phFill()
	}
	w.Close()
	w.Close() // a:fmtScheme

	return w.Bytes()
}

func presProps() []byte {
	w := ooxml.NewWriter()
	w.Empty("p:presentationPr",
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:p", nsPresentation)
	return w.Bytes()
}

func viewProps() []byte {
	w := ooxml.NewWriter()
	w.Open("p:viewPr",
		"xmlns:a", ooxml.NSDrawingML,
		"xmlns:r", ooxml.NSOfficeRels,
		"xmlns:p", nsPresentation)
	w.Empty("p:gridSpacing", "cx", "76200", "cy", "76200")
	return w.Bytes()
}

func tableStyles() []byte {
	w := ooxml.NewWriter()
	w.Empty("a:tblStyleLst", "xmlns:a", ooxml.NSDrawingML, "def", "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}")
	return w.Bytes()
}
