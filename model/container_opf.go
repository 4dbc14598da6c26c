package model

import "encoding/xml"

// DublinCoreMetadata is the <metadata> block of content.opf. The dc and
// opf prefixes are declared on the enclosing <package>.
type DublinCoreMetadata struct {
	XMLName xml.Name `xml:"metadata"`

	Titles       []DCTitle       `xml:"dc:title"`
	Identifiers  []DCIdentifier  `xml:"dc:identifier"`
	Languages    []DCLanguage    `xml:"dc:language"`
	Creators     []DCCreator     `xml:"dc:creator"`
	Dates        []DCDate        `xml:"dc:date"`
	Descriptions []DCDescription `xml:"dc:description"`
	Publishers   []DCPublisher   `xml:"dc:publisher"`
	Rights       []DCRights      `xml:"dc:rights"`
	Subjects     []DCSubject     `xml:"dc:subject"`
	Sources      []DCSource      `xml:"dc:source"`

	// <meta> entries, both EPUB 3 property metas and name/content pairs
	Metas []DublinCoreMeta `xml:"meta"`
}

func (d *DublinCoreMetadata) Marshal() (string, error) {
	xmlBytes, err := xml.MarshalIndent(d, "  ", "  ")
	if err != nil {
		return "", err
	}
	return string(xmlBytes), nil
}

type DCTitle struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr,omitempty"`
}

type DCIdentifier struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr,omitempty"`
	Scheme string `xml:"opf:scheme,attr,omitempty"`
}

type DCLanguage struct {
	Value string `xml:",chardata"`
}

type DCCreator struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr,omitempty"`
	Role   string `xml:"opf:role,attr,omitempty"`
	FileAs string `xml:"opf:file-as,attr,omitempty"`
}

// DCDate holds a W3CDTF date such as 2024-03-01
type DCDate struct {
	Value string `xml:",chardata"`
	Event string `xml:"opf:event,attr,omitempty"`
}

type DCDescription struct {
	Value string `xml:",chardata"`
}

type DCPublisher struct {
	Value string `xml:",chardata"`
}

type DCRights struct {
	Value string `xml:",chardata"`
}

type DCSubject struct {
	Value string `xml:",chardata"`
}

type DCSource struct {
	Value string `xml:",chardata"`
}

type DublinCoreMeta struct {
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type Manifest struct {
	XMLName xml.Name       `xml:"manifest"`
	Items   []ManifestItem `xml:"item"`
}

func (m *Manifest) Marshal() (string, error) {
	xmlBytes, err := xml.MarshalIndent(m, "  ", "  ")
	if err != nil {
		return "", err
	}
	return string(xmlBytes), nil
}

type ManifestItem struct {
	ID         string `xml:"id,attr"`
	Link       string `xml:"href,attr"`
	Media      string `xml:"media-type,attr,omitempty"`
	Properties string `xml:"properties,attr,omitempty"`
}

type Spine struct {
	XMLName xml.Name    `xml:"spine"`
	Toc     string      `xml:"toc,attr,omitempty"`
	Items   []SpineItem `xml:"itemref"`
}

func (s *Spine) Marshal() (string, error) {
	xmlBytes, err := xml.MarshalIndent(s, "  ", "  ")
	if err != nil {
		return "", err
	}
	return string(xmlBytes), nil
}

type SpineItem struct {
	IDref  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// Guide is the EPUB 2 landmark list, kept for older readers.
type Guide struct {
	XMLName xml.Name    `xml:"guide"`
	Items   []GuideItem `xml:"reference"`
}

func (g *Guide) Marshal() (string, error) {
	xmlBytes, err := xml.MarshalIndent(g, "  ", "  ")
	if err != nil {
		return "", err
	}
	return string(xmlBytes), nil
}

type GuideItem struct {
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
	Link  string `xml:"href,attr"`
}
