package xml

import (
	"encoding/xml"
	"strconv"
)

// Page dimensions in twips.
var (
	PageLetter = PageSize{W: 12240, H: 15840}
	PageA4     = PageSize{W: 11906, H: 16838}
)

// SectionProperties represents the final w:sectPr of a document body
type SectionProperties struct {
	PageSize    *PageSize    `xml:"pgSz"`
	PageMargins *PageMargins `xml:"pgMar"`
}

// NewSectionProperties returns section properties for the given page with
// one-inch margins.
func NewSectionProperties(page PageSize) *SectionProperties {
	return &SectionProperties{
		PageSize: &page,
		PageMargins: &PageMargins{
			Top: 1440, Right: 1440, Bottom: 1440, Left: 1440,
			Header: 720, Footer: 720,
		},
	}
}

// ContentWidth returns the usable width between the margins in twips.
func (s *SectionProperties) ContentWidth() int {
	if s == nil || s.PageSize == nil {
		return PageLetter.W - 2*1440
	}
	w := s.PageSize.W
	if s.PageMargins != nil {
		w -= s.PageMargins.Left + s.PageMargins.Right
	}
	return w
}

// MarshalXML implements custom XML marshaling for SectionProperties
func (s SectionProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("sectPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if s.PageSize != nil {
		if err := e.EncodeElement(s.PageSize, wStart("pgSz")); err != nil {
			return err
		}
	}
	if s.PageMargins != nil {
		if err := e.EncodeElement(s.PageMargins, wStart("pgMar")); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// PageSize represents w:pgSz
type PageSize struct {
	W      int    `xml:"w,attr"`
	H      int    `xml:"h,attr"`
	Orient string `xml:"orient,attr,omitempty"`
}

// MarshalXML implements custom XML marshaling for PageSize
func (p PageSize) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	attrs := []xml.Attr{
		wAttr("w", strconv.Itoa(p.W)),
		wAttr("h", strconv.Itoa(p.H)),
	}
	if p.Orient != "" {
		attrs = append(attrs, wAttr("orient", p.Orient))
	}
	return encodeEmpty(e, "pgSz", attrs...)
}

// PageMargins represents w:pgMar
type PageMargins struct {
	Top    int `xml:"top,attr"`
	Right  int `xml:"right,attr"`
	Bottom int `xml:"bottom,attr"`
	Left   int `xml:"left,attr"`
	Header int `xml:"header,attr"`
	Footer int `xml:"footer,attr"`
	Gutter int `xml:"gutter,attr"`
}

// MarshalXML implements custom XML marshaling for PageMargins
func (m PageMargins) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return encodeEmpty(e, "pgMar",
		wAttr("top", strconv.Itoa(m.Top)),
		wAttr("right", strconv.Itoa(m.Right)),
		wAttr("bottom", strconv.Itoa(m.Bottom)),
		wAttr("left", strconv.Itoa(m.Left)),
		wAttr("header", strconv.Itoa(m.Header)),
		wAttr("footer", strconv.Itoa(m.Footer)),
		wAttr("gutter", strconv.Itoa(m.Gutter)),
	)
}
