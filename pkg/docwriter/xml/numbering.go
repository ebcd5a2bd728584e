package xml

import (
	"encoding/xml"
	"strconv"
)

// Number formats for w:numFmt.
const (
	NumFmtBullet  = "bullet"
	NumFmtDecimal = "decimal"
)

// Numbering represents the word/numbering.xml part
type Numbering struct {
	AbstractNums []AbstractNum `xml:"abstractNum"`
	Nums         []Num         `xml:"num"`
}

// AbstractNumFor returns the abstract definition a num instance points at.
func (n *Numbering) AbstractNumFor(numID int) *AbstractNum {
	for _, num := range n.Nums {
		if num.ID != numID {
			continue
		}
		for i := range n.AbstractNums {
			if n.AbstractNums[i].ID == num.AbstractNumID {
				return &n.AbstractNums[i]
			}
		}
	}
	return nil
}

// MarshalXML writes the w:numbering root with its namespace declaration.
// All abstract definitions precede the num instances, as the schema requires.
func (n Numbering) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("numbering")
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns:w"}, Value: NamespaceW}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for i := range n.AbstractNums {
		if err := e.EncodeElement(&n.AbstractNums[i], wStart("abstractNum")); err != nil {
			return err
		}
	}
	for i := range n.Nums {
		if err := e.EncodeElement(&n.Nums[i], wStart("num")); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// ParseNumbering parses a word/numbering.xml part
func ParseNumbering(data []byte) (*Numbering, error) {
	var n Numbering
	if err := xml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// AbstractNum is a numbering definition shared by num instances
type AbstractNum struct {
	ID             int              `xml:"abstractNumId,attr"`
	MultiLevelType *StringVal       `xml:"multiLevelType"`
	Levels         []NumberingLevel `xml:"lvl"`
}

// Format returns the number format of level 0, or "" when undefined.
func (a *AbstractNum) Format() string {
	for _, lvl := range a.Levels {
		if lvl.Level == 0 && lvl.Format != nil {
			return lvl.Format.Val
		}
	}
	return ""
}

// MarshalXML implements custom XML marshaling for AbstractNum
func (a AbstractNum) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("abstractNum")
	start.Attr = []xml.Attr{wAttr("abstractNumId", strconv.Itoa(a.ID))}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if a.MultiLevelType != nil {
		if err := e.EncodeElement(a.MultiLevelType, wStart("multiLevelType")); err != nil {
			return err
		}
	}
	for i := range a.Levels {
		if err := e.EncodeElement(&a.Levels[i], wStart("lvl")); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// NumberingLevel describes one level of a numbering definition
type NumberingLevel struct {
	Level               int                  `xml:"ilvl,attr"`
	Start               *IntVal              `xml:"start"`
	Format              *StringVal           `xml:"numFmt"`
	Text                *StringVal           `xml:"lvlText"`
	Justification       *StringVal           `xml:"lvlJc"`
	ParagraphProperties *ParagraphProperties `xml:"pPr"`
	RunProperties       *RunProperties       `xml:"rPr"`
}

// MarshalXML implements custom XML marshaling for NumberingLevel
func (l NumberingLevel) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("lvl")
	start.Attr = []xml.Attr{wAttr("ilvl", strconv.Itoa(l.Level))}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range []struct {
		name string
		val  interface{}
		set  bool
	}{
		{"start", l.Start, l.Start != nil},
		{"numFmt", l.Format, l.Format != nil},
		{"lvlText", l.Text, l.Text != nil},
		{"lvlJc", l.Justification, l.Justification != nil},
		{"pPr", l.ParagraphProperties, l.ParagraphProperties != nil},
		{"rPr", l.RunProperties, l.RunProperties != nil},
	} {
		if !child.set {
			continue
		}
		if err := e.EncodeElement(child.val, wStart(child.name)); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Num is a numbering instance referenced from paragraphs by numId
type Num struct {
	ID            int `xml:"numId,attr"`
	AbstractNumID int
	// StartOverride restarts level 0 at the given value when non-zero
	StartOverride int
}

// UnmarshalXML implements custom XML unmarshaling for Num
func (n *Num) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		ID          int    `xml:"numId,attr"`
		AbstractNum IntVal `xml:"abstractNumId"`
		Overrides   []struct {
			Level int     `xml:"ilvl,attr"`
			Start *IntVal `xml:"startOverride"`
		} `xml:"lvlOverride"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	n.ID = raw.ID
	n.AbstractNumID = raw.AbstractNum.Val
	for _, o := range raw.Overrides {
		if o.Level == 0 && o.Start != nil {
			n.StartOverride = o.Start.Val
		}
	}
	return nil
}

// MarshalXML implements custom XML marshaling for Num
func (n Num) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("num")
	start.Attr = []xml.Attr{wAttr("numId", strconv.Itoa(n.ID))}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeEmpty(e, "abstractNumId", wAttr("val", strconv.Itoa(n.AbstractNumID))); err != nil {
		return err
	}
	if n.StartOverride != 0 {
		override := wStart("lvlOverride")
		override.Attr = []xml.Attr{wAttr("ilvl", "0")}
		if err := e.EncodeToken(override); err != nil {
			return err
		}
		if err := encodeEmpty(e, "startOverride", wAttr("val", strconv.Itoa(n.StartOverride))); err != nil {
			return err
		}
		if err := e.EncodeToken(override.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}
