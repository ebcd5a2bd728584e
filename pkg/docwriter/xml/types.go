package xml

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"
)

// Namespace URIs used by the WordprocessingML parts.
const (
	NamespaceW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	namespaceXML = "http://www.w3.org/XML/1998/namespace"
)

// BodyElement represents any element that can appear in a document body
type BodyElement interface {
	isBodyElement()
}

// RunContent represents any content that can appear in a run
type RunContent interface {
	isRunContent()
}

// wName returns a "w:"-prefixed element or attribute name.
func wName(local string) xml.Name {
	return xml.Name{Local: "w:" + local}
}

func wStart(local string) xml.StartElement {
	return xml.StartElement{Name: wName(local)}
}

func wAttr(local, value string) xml.Attr {
	return xml.Attr{Name: wName(local), Value: value}
}

// encodeEmpty writes a self-closing element with the given attributes.
func encodeEmpty(e *xml.Encoder, local string, attrs ...xml.Attr) error {
	start := wStart(local)
	start.Attr = attrs
	return e.EncodeElement(struct{}{}, start)
}

// Style represents a style reference
type Style struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for Style
func (s Style) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	// The element name depends on the context (pStyle, tblStyle, etc.)
	// so we keep the provided name
	start.Attr = []xml.Attr{wAttr("val", s.Val)}
	return e.EncodeElement(struct{}{}, start)
}

// OnOff represents a toggle property such as w:b or w:i. An element with no
// val attribute is on.
type OnOff struct {
	Val string `xml:"val,attr,omitempty"`
}

// On returns an OnOff that is set.
func On() *OnOff {
	return &OnOff{}
}

// IsOn reports whether the toggle is set. A nil toggle is off.
func (o *OnOff) IsOn() bool {
	if o == nil {
		return false
	}
	switch strings.ToLower(o.Val) {
	case "", "1", "true", "on":
		return true
	default:
		return false
	}
}

// MarshalXML implements custom XML marshaling for OnOff
func (o OnOff) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = nil
	if o.Val != "" {
		start.Attr = []xml.Attr{wAttr("val", o.Val)}
	}
	return e.EncodeElement(struct{}{}, start)
}

// IntVal represents an element carrying a single integer w:val attribute
type IntVal struct {
	Val int `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for IntVal
func (v IntVal) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{wAttr("val", strconv.Itoa(v.Val))}
	return e.EncodeElement(struct{}{}, start)
}

// StringVal represents an element carrying a single string w:val attribute
type StringVal struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for StringVal
func (v StringVal) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{wAttr("val", v.Val)}
	return e.EncodeElement(struct{}{}, start)
}

// PointsToTwips converts points to twentieths of a point.
func PointsToTwips(pt float64) int {
	return int(math.Round(pt * 20))
}

// TwipsToPoints converts twentieths of a point to points.
func TwipsToPoints(twips int) float64 {
	return float64(twips) / 20
}

// PointsToHalfPoints converts points to the half-point unit used by w:sz.
func PointsToHalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

// HalfPointsToPoints converts half-points to points.
func HalfPointsToPoints(hp int) float64 {
	return float64(hp) / 2
}
