package xml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Properties *ParagraphProperties
	Runs       []Run
}

// isBodyElement implements the BodyElement interface
func (p Paragraph) isBodyElement() {}

// UnmarshalXML implements custom XML unmarshaling to preserve run order.
// Runs nested in hyperlinks, smart tags and similar wrappers are flattened
// into the paragraph.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 0
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
			case "pPr":
				var props ParagraphProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				p.Properties = &props
			case "r":
				var run Run
				if err := d.DecodeElement(&run, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, run)
			case "hyperlink", "smartTag", "ins", "fldSimple":
				depth++
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				continue
			}
			if t.Name.Local == "p" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for Paragraph to ensure proper namespacing
func (p Paragraph) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("p")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := e.EncodeElement(p.Properties, wStart("pPr")); err != nil {
			return err
		}
	}

	for i := range p.Runs {
		if err := e.EncodeElement(&p.Runs[i], wStart("r")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for i := range p.Runs {
		sb.WriteString(p.Runs[i].GetText())
	}
	return sb.String()
}

// StyleID returns the paragraph style id, or "" when none is set.
func (p *Paragraph) StyleID() string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

// HasPageBreak reports whether any run in the paragraph carries a page break.
func (p *Paragraph) HasPageBreak() bool {
	for i := range p.Runs {
		for _, c := range p.Runs[i].Content {
			if br, ok := c.(*Break); ok && br.Type == BreakPage {
				return true
			}
		}
	}
	return false
}

// ParagraphProperties represents paragraph formatting properties
type ParagraphProperties struct {
	Style     *Style
	KeepNext  *OnOff
	Numbering *NumberingProperties
	Spacing   *Spacing
	Indent    *Indentation
	Alignment *Alignment
	// RunProperties sets defaults for runs in this paragraph
	RunProperties *RunProperties
}

// UnmarshalXML implements custom XML unmarshaling, skipping properties this
// package does not model
func (p *ParagraphProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			case "pStyle":
				p.Style = &Style{}
				target = p.Style
			case "keepNext":
				p.KeepNext = &OnOff{}
				target = p.KeepNext
			case "numPr":
				p.Numbering = &NumberingProperties{}
				target = p.Numbering
			case "spacing":
				p.Spacing = &Spacing{}
				target = p.Spacing
			case "ind":
				p.Indent = &Indentation{}
				target = p.Indent
			case "jc":
				p.Alignment = &Alignment{}
				target = p.Alignment
			case "rPr":
				p.RunProperties = &RunProperties{}
				target = p.RunProperties
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

// MarshalXML implements custom XML marshaling for ParagraphProperties.
// Children are written in schema order.
func (p ParagraphProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("pPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Style != nil {
		if err := e.EncodeElement(p.Style, wStart("pStyle")); err != nil {
			return err
		}
	}
	if p.KeepNext != nil {
		if err := e.EncodeElement(p.KeepNext, wStart("keepNext")); err != nil {
			return err
		}
	}
	if p.Numbering != nil {
		if err := e.EncodeElement(p.Numbering, wStart("numPr")); err != nil {
			return err
		}
	}
	if p.Spacing != nil {
		if err := e.EncodeElement(p.Spacing, wStart("spacing")); err != nil {
			return err
		}
	}
	if p.Indent != nil {
		if err := e.EncodeElement(p.Indent, wStart("ind")); err != nil {
			return err
		}
	}
	if p.Alignment != nil {
		if err := e.EncodeElement(p.Alignment, wStart("jc")); err != nil {
			return err
		}
	}
	if p.RunProperties != nil {
		if err := e.EncodeElement(p.RunProperties, wStart("rPr")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// NumberingProperties links a paragraph to a numbering definition
type NumberingProperties struct {
	Level *IntVal `xml:"ilvl"`
	NumID *IntVal `xml:"numId"`
}

// MarshalXML implements custom XML marshaling for NumberingProperties
func (n NumberingProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("numPr")
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if n.Level != nil {
		if err := e.EncodeElement(n.Level, wStart("ilvl")); err != nil {
			return err
		}
	}
	if n.NumID != nil {
		if err := e.EncodeElement(n.NumID, wStart("numId")); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Alignment values for w:jc.
const (
	JustifyLeft   = "left"
	JustifyCenter = "center"
	JustifyRight  = "right"
	JustifyBoth   = "both"
)

// Alignment represents text alignment
type Alignment struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for Alignment
func (a Alignment) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return encodeEmpty(e, "jc", wAttr("val", a.Val))
}

// Indentation represents paragraph indentation in twips
type Indentation struct {
	Left    int `xml:"left,attr"`
	Right   int `xml:"right,attr"`
	Hanging int `xml:"hanging,attr"`
}

// MarshalXML implements custom XML marshaling for Indentation
func (i Indentation) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	attrs := []xml.Attr{wAttr("left", strconv.Itoa(i.Left))}
	if i.Right != 0 {
		attrs = append(attrs, wAttr("right", strconv.Itoa(i.Right)))
	}
	if i.Hanging != 0 {
		attrs = append(attrs, wAttr("hanging", strconv.Itoa(i.Hanging)))
	}
	return encodeEmpty(e, "ind", attrs...)
}

// Spacing represents paragraph spacing in twips. Nil fields are inherited
// from the style; a zero value is written explicitly.
type Spacing struct {
	Before   *int   `xml:"before,attr"`
	After    *int   `xml:"after,attr"`
	Line     int    `xml:"line,attr,omitempty"`
	LineRule string `xml:"lineRule,attr,omitempty"`
}

// SpacingAfter returns a Spacing that only sets the space below a paragraph.
func SpacingAfter(twips int) *Spacing {
	return &Spacing{After: &twips}
}

// MarshalXML implements custom XML marshaling for Spacing
func (s Spacing) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var attrs []xml.Attr
	if s.Before != nil {
		attrs = append(attrs, wAttr("before", strconv.Itoa(*s.Before)))
	}
	if s.After != nil {
		attrs = append(attrs, wAttr("after", strconv.Itoa(*s.After)))
	}
	if s.Line != 0 {
		attrs = append(attrs, wAttr("line", strconv.Itoa(s.Line)))
	}
	if s.LineRule != "" {
		attrs = append(attrs, wAttr("lineRule", s.LineRule))
	}
	return encodeEmpty(e, "spacing", attrs...)
}
