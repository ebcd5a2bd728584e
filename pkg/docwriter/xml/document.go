package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Document represents a Word document structure
type Document struct {
	XMLName xml.Name `xml:"document"`
	Body    *Body    `xml:"body"`
}

// MarshalXML writes the w:document root with its namespace declarations
func (doc Document) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("document")
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "xmlns:w"}, Value: NamespaceW},
		{Name: xml.Name{Local: "xmlns:r"}, Value: NamespaceR},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	body := doc.Body
	if body == nil {
		body = &Body{}
	}
	if err := e.EncodeElement(body, wStart("body")); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BodyElement
	// SectionProperties at the end of the body
	SectionProperties *SectionProperties
}

// UnmarshalXML implements custom XML unmarshaling to preserve element order
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			case "p":
				var para Paragraph
				if err := d.DecodeElement(&para, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, &para)
			case "tbl":
				var table Table
				if err := d.DecodeElement(&table, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, &table)
			case "sectPr":
				var sect SectionProperties
				if err := d.DecodeElement(&sect, &t); err != nil {
					return err
				}
				b.SectionProperties = &sect
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = wName("body")
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, elem := range b.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			if err := e.EncodeElement(el, wStart("p")); err != nil {
				return err
			}
		case *Table:
			if err := e.EncodeElement(el, wStart("tbl")); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported body element %T", elem)
		}
	}

	// Section properties must be the last child of the body
	if b.SectionProperties != nil {
		if err := e.EncodeElement(b.SectionProperties, wStart("sectPr")); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Marshal encodes v with the standard XML declaration, as every DOCX part
// expects.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Body == nil {
		doc.Body = &Body{}
	}

	return &doc, nil
}
