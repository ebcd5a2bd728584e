package docx

import (
	"encoding/xml"
	"time"
)

// Part names inside the package.
const (
	PartContentTypes  = "[Content_Types].xml"
	PartRootRels      = "_rels/.rels"
	PartDocument      = "word/document.xml"
	PartDocumentRels  = "word/_rels/document.xml.rels"
	PartStyles        = "word/styles.xml"
	PartNumbering     = "word/numbering.xml"
	PartCoreProps     = "docProps/core.xml"
	PartAppProps      = "docProps/app.xml"
	xmlStandaloneHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// Content types
const (
	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeXML           = "application/xml"
	ContentTypeDocument      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ContentTypeStyles        = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ContentTypeNumbering     = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ContentTypeCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	ContentTypeAppProps      = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Relationship types
const (
	RelTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelTypeNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	RelTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelTypeAppProps       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

const (
	namespaceContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"
	namespaceRelationship = "http://schemas.openxmlformats.org/package/2006/relationships"
	namespaceCoreProps    = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	namespaceAppProps     = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	namespaceDC           = "http://purl.org/dc/elements/1.1/"
	namespaceDCTerms      = "http://purl.org/dc/terms/"
	namespaceXSI          = "http://www.w3.org/2001/XMLSchema-instance"
)

// ContentTypes represents [Content_Types].xml
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault maps a file extension to a content type
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride maps a single part to a content type
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Relationship represents a relationship in a .rels file
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents a collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// ByType returns the first relationship of the given type, or nil.
func (r *Relationships) ByType(relType string) *Relationship {
	for i := range r.Relationship {
		if r.Relationship[i].Type == relType {
			return &r.Relationship[i]
		}
	}
	return nil
}

// CoreProperties represents docProps/core.xml
type CoreProperties struct {
	Title          string
	Subject        string
	Creator        string
	Language       string
	Identifier     string
	LastModifiedBy string
	Created        time.Time
	Modified       time.Time
}

// MarshalXML writes cp:coreProperties with the Dublin Core prefixes Word expects.
func (c CoreProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "cp:coreProperties"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "xmlns:cp"}, Value: namespaceCoreProps},
		{Name: xml.Name{Local: "xmlns:dc"}, Value: namespaceDC},
		{Name: xml.Name{Local: "xmlns:dcterms"}, Value: namespaceDCTerms},
		{Name: xml.Name{Local: "xmlns:xsi"}, Value: namespaceXSI},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, field := range []struct{ name, val string }{
		{"dc:title", c.Title},
		{"dc:subject", c.Subject},
		{"dc:creator", c.Creator},
		{"dc:language", c.Language},
		{"dc:identifier", c.Identifier},
		{"cp:lastModifiedBy", c.LastModifiedBy},
	} {
		if field.val == "" {
			continue
		}
		if err := e.EncodeElement(field.val, xml.StartElement{Name: xml.Name{Local: field.name}}); err != nil {
			return err
		}
	}

	for _, stamp := range []struct {
		name string
		t    time.Time
	}{
		{"dcterms:created", c.Created},
		{"dcterms:modified", c.Modified},
	} {
		if stamp.t.IsZero() {
			continue
		}
		el := xml.StartElement{
			Name: xml.Name{Local: stamp.name},
			Attr: []xml.Attr{{Name: xml.Name{Local: "xsi:type"}, Value: "dcterms:W3CDTF"}},
		}
		if err := e.EncodeElement(stamp.t.UTC().Format(time.RFC3339), el); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// UnmarshalXML reads the properties by local name, ignoring the prefixes.
func (c *CoreProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Title          string `xml:"title"`
		Subject        string `xml:"subject"`
		Creator        string `xml:"creator"`
		Language       string `xml:"language"`
		Identifier     string `xml:"identifier"`
		LastModifiedBy string `xml:"lastModifiedBy"`
		Created        string `xml:"created"`
		Modified       string `xml:"modified"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	c.Title = raw.Title
	c.Subject = raw.Subject
	c.Creator = raw.Creator
	c.Language = raw.Language
	c.Identifier = raw.Identifier
	c.LastModifiedBy = raw.LastModifiedBy
	// Unparseable timestamps are left zero rather than failing the whole part.
	if t, err := time.Parse(time.RFC3339, raw.Created); err == nil {
		c.Created = t
	}
	if t, err := time.Parse(time.RFC3339, raw.Modified); err == nil {
		c.Modified = t
	}
	return nil
}

// AppProperties represents docProps/app.xml
type AppProperties struct {
	XMLName     xml.Name `xml:"Properties"`
	Namespace   string   `xml:"xmlns,attr"`
	Application string   `xml:"Application,omitempty"`
	DocSecurity int      `xml:"DocSecurity"`
	Paragraphs  int      `xml:"Paragraphs,omitempty"`
}
