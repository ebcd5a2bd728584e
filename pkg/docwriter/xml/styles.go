package xml

import (
	"encoding/xml"
	"strconv"
)

// Style types for w:style.
const (
	StyleTypeParagraph = "paragraph"
	StyleTypeCharacter = "character"
	StyleTypeTable     = "table"
	StyleTypeNumbering = "numbering"
)

// Styles represents the word/styles.xml part
type Styles struct {
	DocDefaults *DocDefaults
	Styles      []StyleDefinition
}

// Find returns the style with the given id, or nil.
func (s *Styles) Find(id string) *StyleDefinition {
	for i := range s.Styles {
		if s.Styles[i].ID == id {
			return &s.Styles[i]
		}
	}
	return nil
}

// MarshalXML writes the w:styles root with its namespace declaration
func (s Styles) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("styles")
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns:w"}, Value: NamespaceW}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if s.DocDefaults != nil {
		if err := e.EncodeElement(s.DocDefaults, wStart("docDefaults")); err != nil {
			return err
		}
	}
	for i := range s.Styles {
		if err := e.EncodeElement(&s.Styles[i], wStart("style")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// DocDefaults holds the document-wide default run and paragraph properties
type DocDefaults struct {
	RunProperties       *RunProperties
	ParagraphProperties *ParagraphProperties
}

// MarshalXML implements custom XML marshaling for DocDefaults
func (d DocDefaults) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("docDefaults")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if d.RunProperties != nil {
		wrapper := wStart("rPrDefault")
		if err := e.EncodeToken(wrapper); err != nil {
			return err
		}
		if err := e.EncodeElement(d.RunProperties, wStart("rPr")); err != nil {
			return err
		}
		if err := e.EncodeToken(wrapper.End()); err != nil {
			return err
		}
	}
	if d.ParagraphProperties != nil {
		wrapper := wStart("pPrDefault")
		if err := e.EncodeToken(wrapper); err != nil {
			return err
		}
		if err := e.EncodeElement(d.ParagraphProperties, wStart("pPr")); err != nil {
			return err
		}
		if err := e.EncodeToken(wrapper.End()); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// StyleDefinition represents a single w:style
type StyleDefinition struct {
	Type       string
	ID         string
	Name       string
	Default    bool
	BasedOn    string
	Next       string
	UIPriority int
	QFormat    bool

	ParagraphProperties *ParagraphProperties
	RunProperties       *RunProperties
	TableProperties     *TableProperties
}

// MarshalXML implements custom XML marshaling for StyleDefinition.
// Children are written in schema order.
func (s StyleDefinition) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("style")
	start.Attr = []xml.Attr{wAttr("type", s.Type)}
	if s.Default {
		start.Attr = append(start.Attr, wAttr("default", "1"))
	}
	start.Attr = append(start.Attr, wAttr("styleId", s.ID))
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if err := encodeEmpty(e, "name", wAttr("val", s.Name)); err != nil {
		return err
	}
	if s.BasedOn != "" {
		if err := encodeEmpty(e, "basedOn", wAttr("val", s.BasedOn)); err != nil {
			return err
		}
	}
	if s.Next != "" {
		if err := encodeEmpty(e, "next", wAttr("val", s.Next)); err != nil {
			return err
		}
	}
	if s.UIPriority > 0 {
		if err := encodeEmpty(e, "uiPriority", wAttr("val", strconv.Itoa(s.UIPriority))); err != nil {
			return err
		}
	}
	if s.QFormat {
		if err := encodeEmpty(e, "qFormat"); err != nil {
			return err
		}
	}
	if s.ParagraphProperties != nil {
		if err := e.EncodeElement(s.ParagraphProperties, wStart("pPr")); err != nil {
			return err
		}
	}
	if s.RunProperties != nil {
		if err := e.EncodeElement(s.RunProperties, wStart("rPr")); err != nil {
			return err
		}
	}
	if s.TableProperties != nil {
		if err := e.EncodeElement(s.TableProperties, wStart("tblPr")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// UnmarshalXML reads the attributes and the properties this package models
func (s *StyleDefinition) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "type":
			s.Type = a.Value
		case "styleId":
			s.ID = a.Value
		case "default":
			s.Default = (&OnOff{Val: a.Value}).IsOn()
		}
	}

	var raw struct {
		Name       *StringVal           `xml:"name"`
		BasedOn    *StringVal           `xml:"basedOn"`
		Next       *StringVal           `xml:"next"`
		UIPriority *IntVal              `xml:"uiPriority"`
		QFormat    *OnOff               `xml:"qFormat"`
		PPr        *ParagraphProperties `xml:"pPr"`
		RPr        *RunProperties       `xml:"rPr"`
		TblPr      *TableProperties     `xml:"tblPr"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	if raw.Name != nil {
		s.Name = raw.Name.Val
	}
	if raw.BasedOn != nil {
		s.BasedOn = raw.BasedOn.Val
	}
	if raw.Next != nil {
		s.Next = raw.Next.Val
	}
	if raw.UIPriority != nil {
		s.UIPriority = raw.UIPriority.Val
	}
	s.QFormat = raw.QFormat.IsOn()
	s.ParagraphProperties = raw.PPr
	s.RunProperties = raw.RPr
	s.TableProperties = raw.TblPr
	return nil
}

// ParseStyles parses a word/styles.xml part
func ParseStyles(data []byte) (*Styles, error) {
	var raw struct {
		Styles []StyleDefinition `xml:"style"`
	}
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Styles{Styles: raw.Styles}, nil
}
