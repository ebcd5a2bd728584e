package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Break types for w:br.
const (
	BreakLine = ""
	BreakPage = "page"
)

// Run represents a run of text with common properties
type Run struct {
	Properties *RunProperties
	// Content holds text, breaks and tabs in document order
	Content []RunContent
}

// NewTextRun builds a run whose text is split on '\n' into w:t elements
// separated by line breaks.
func NewTextRun(props *RunProperties, text string) Run {
	run := Run{Properties: props}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.Content = append(run.Content, &Break{})
		}
		if line != "" {
			run.Content = append(run.Content, NewText(line))
		}
	}
	return run
}

// NewBreakRun builds a run holding a single break of the given type.
func NewBreakRun(breakType string) Run {
	return Run{Content: []RunContent{&Break{Type: breakType}}}
}

// UnmarshalXML implements custom XML unmarshaling to preserve content order
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				var props RunProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				r.Properties = &props
			case "t":
				var text Text
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				r.Content = append(r.Content, &text)
			case "br":
				var br Break
				if err := d.DecodeElement(&br, &t); err != nil {
					return err
				}
				r.Content = append(r.Content, &br)
			case "cr":
				r.Content = append(r.Content, &Break{})
				if err := d.Skip(); err != nil {
					return err
				}
			case "tab":
				r.Content = append(r.Content, &Tab{})
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("r")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.EncodeElement(r.Properties, wStart("rPr")); err != nil {
			return err
		}
	}

	for _, c := range r.Content {
		var err error
		switch v := c.(type) {
		case *Text:
			err = e.EncodeElement(v, wStart("t"))
		case *Break:
			err = e.EncodeElement(v, wStart("br"))
		case *Tab:
			err = encodeEmpty(e, "tab")
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text content of a run. Line breaks read as '\n' and
// tabs as '\t'; page breaks contribute nothing.
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			sb.WriteString(v.Content)
		case *Break:
			if v.Type == BreakLine || v.Type == "textWrapping" {
				sb.WriteByte('\n')
			}
		case *Tab:
			sb.WriteByte('\t')
		}
	}
	return sb.String()
}

// Text represents text content
type Text struct {
	Space   string `xml:"space,attr"`
	Content string `xml:",chardata"`
}

func (*Text) isRunContent() {}

// NewText returns a Text that preserves leading and trailing spaces.
func NewText(s string) *Text {
	t := &Text{Content: s}
	if strings.TrimSpace(s) != s {
		t.Space = "preserve"
	}
	return t
}

// MarshalXML implements custom XML marshaling for Text to ensure proper namespacing
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("t")
	start.Attr = nil
	if t.Space == "preserve" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Space: namespaceXML, Local: "space"},
			Value: "preserve",
		})
	}
	return e.EncodeElement(t.Content, start)
}

// Break represents a line, column or page break
type Break struct {
	Type string `xml:"type,attr,omitempty"`
}

func (*Break) isRunContent() {}

// MarshalXML implements xml.Marshaler to ensure Break is self-closing
func (b Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if b.Type != "" {
		return encodeEmpty(e, "br", wAttr("type", b.Type))
	}
	return encodeEmpty(e, "br")
}

// Tab represents a tab character
type Tab struct{}

func (*Tab) isRunContent() {}

// RunProperties represents run formatting properties
type RunProperties struct {
	Style  *Style
	Font   *Font
	Bold   *OnOff
	Italic *OnOff
	Color  *Color
	Size   *IntVal
	// SizeCs is the complex script size
	SizeCs *IntVal
	Lang   *Lang
}

// UnmarshalXML implements custom XML unmarshaling for RunProperties
func (p *RunProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			var target interface{}
			switch t.Name.Local {
			case "rStyle":
				p.Style = &Style{}
				target = p.Style
			case "rFonts":
				p.Font = &Font{}
				target = p.Font
			case "b":
				p.Bold = &OnOff{}
				target = p.Bold
			case "i":
				p.Italic = &OnOff{}
				target = p.Italic
			case "color":
				p.Color = &Color{}
				target = p.Color
			case "sz":
				p.Size = &IntVal{}
				target = p.Size
			case "szCs":
				p.SizeCs = &IntVal{}
				target = p.SizeCs
			case "lang":
				p.Lang = &Lang{}
				target = p.Lang
			}
			if target == nil {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := d.DecodeElement(target, &t); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML implements custom XML marshaling for RunProperties.
// Children are written in schema order.
func (p RunProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("rPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Style != nil {
		if err := e.EncodeElement(p.Style, wStart("rStyle")); err != nil {
			return err
		}
	}
	if p.Font != nil {
		if err := e.EncodeElement(p.Font, wStart("rFonts")); err != nil {
			return err
		}
	}
	if p.Bold != nil {
		if err := e.EncodeElement(p.Bold, wStart("b")); err != nil {
			return err
		}
	}
	if p.Italic != nil {
		if err := e.EncodeElement(p.Italic, wStart("i")); err != nil {
			return err
		}
	}
	if p.Color != nil {
		if err := e.EncodeElement(p.Color, wStart("color")); err != nil {
			return err
		}
	}
	if p.Size != nil {
		if err := e.EncodeElement(p.Size, wStart("sz")); err != nil {
			return err
		}
	}
	if p.SizeCs != nil {
		if err := e.EncodeElement(p.SizeCs, wStart("szCs")); err != nil {
			return err
		}
	}
	if p.Lang != nil {
		if err := e.EncodeElement(p.Lang, wStart("lang")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// SizePt returns the run size in points, or 0 when unset.
func (p *RunProperties) SizePt() float64 {
	if p == nil || p.Size == nil {
		return 0
	}
	return HalfPointsToPoints(p.Size.Val)
}

// FontName returns the ASCII font name, or "" when unset.
func (p *RunProperties) FontName() string {
	if p == nil || p.Font == nil {
		return ""
	}
	return p.Font.ASCII
}

// Color represents text color as RRGGBB or "auto"
type Color struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for Color
func (c Color) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return encodeEmpty(e, "color", wAttr("val", c.Val))
}

// Lang represents language settings
type Lang struct {
	Val      string `xml:"val,attr,omitempty"`
	EastAsia string `xml:"eastAsia,attr,omitempty"`
	Bidi     string `xml:"bidi,attr,omitempty"`
}

// MarshalXML implements custom XML marshaling for Lang
func (l Lang) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var attrs []xml.Attr
	if l.Val != "" {
		attrs = append(attrs, wAttr("val", l.Val))
	}
	if l.EastAsia != "" {
		attrs = append(attrs, wAttr("eastAsia", l.EastAsia))
	}
	if l.Bidi != "" {
		attrs = append(attrs, wAttr("bidi", l.Bidi))
	}
	return encodeEmpty(e, "lang", attrs...)
}

// Font represents font information
type Font struct {
	ASCII string `xml:"ascii,attr,omitempty"`
	HAnsi string `xml:"hAnsi,attr,omitempty"`
	CS    string `xml:"cs,attr,omitempty"`
}

// NewFont returns a Font that uses name for every script.
func NewFont(name string) *Font {
	return &Font{ASCII: name, HAnsi: name, CS: name}
}

// MarshalXML implements custom XML marshaling for Font
func (f Font) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var attrs []xml.Attr
	if f.ASCII != "" {
		attrs = append(attrs, wAttr("ascii", f.ASCII))
	}
	if f.HAnsi != "" {
		attrs = append(attrs, wAttr("hAnsi", f.HAnsi))
	}
	if f.CS != "" {
		attrs = append(attrs, wAttr("cs", f.CS))
	}
	return encodeEmpty(e, "rFonts", attrs...)
}
