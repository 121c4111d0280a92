package emptyletters

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Place is a place of creation. ID is an authority identifier, if known.
type Place struct {
	Name string
	ID   *string
}

// Shelfmark locates the physical item. Every part is optional.
type Shelfmark struct {
	Institution *string
	Collection  *string
	Country     *string
	Identifier  *string
}

// Person is an author of a letter. Every part is optional.
type Person struct {
	ID       *string
	Name     *string
	Lifespan *string
}

// Record is the part of a catalog record, that ends up in a letter. All
// lists keep the order of the source document and may be empty.
type Record struct {
	Dates      []string
	Places     []Place
	Footnotes  []string
	Shelfmarks []Shelfmark
	Authors    []Person
}

// Date returns the first creation date, if there is one.
func (r Record) Date() (string, bool) {
	if len(r.Dates) == 0 {
		return "", false
	}
	return r.Dates[0], true
}

// MARC fields and subfields read from the oai_marc section.
const (
	tagDate      = "046"
	tagFootnote  = "500"
	tagAuthor    = "100"
	tagCoAuthor  = "700"
	tagPlace     = "751"
	tagShelfmark = "852"
)

// findDoc is the subset of an Aleph X find-doc response we care about.
type findDoc struct {
	XMLName xml.Name `xml:"find-doc"`
	Error   string   `xml:"error"`
	Record  *struct {
		Metadata struct {
			OAIMARC struct {
				Varfields []varfield `xml:"varfield"`
			} `xml:"oai_marc"`
		} `xml:"metadata"`
	} `xml:"record"`
}

type varfield struct {
	ID        string     `xml:"id,attr"`
	Subfields []subfield `xml:"subfield"`
}

type subfield struct {
	Label string `xml:"label,attr"`
	Value string `xml:",chardata"`
}

// value returns the trimmed content of the first non-blank subfield with the
// given label, nil if there is none.
func (v varfield) value(label string) *string {
	for _, sf := range v.Subfields {
		if sf.Label != label {
			continue
		}
		if s := strings.TrimSpace(sf.Value); s != "" {
			return &s
		}
	}
	return nil
}

// ParseFile parses the raw vendor document at the given path.
func ParseFile(filename string) (Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Record{}, err
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads a find-doc document. Missing fields and sections are not an
// error, they just leave the corresponding parts of the record empty. A
// document that is not XML or not a find-doc response is ErrMalformed, an
// Aleph X error document is ErrNotFound.
func Parse(r io.Reader) (Record, error) {
	var doc findDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if msg := strings.TrimSpace(doc.Error); msg != "" && doc.Record == nil {
		return Record{}, VendorError{Message: msg}
	}
	if doc.Record == nil {
		return Record{}, fmt.Errorf("%w: no record", ErrMalformed)
	}
	var rec Record
	for _, vf := range doc.Record.Metadata.OAIMARC.Varfields {
		switch vf.ID {
		case tagDate:
			if v := vf.value("c"); v != nil {
				rec.Dates = append(rec.Dates, *v)
			}
		case tagPlace:
			if name := vf.value("a"); name != nil {
				rec.Places = append(rec.Places, Place{Name: *name, ID: vf.value("0")})
			}
		case tagFootnote:
			if v := vf.value("a"); v != nil {
				rec.Footnotes = append(rec.Footnotes, *v)
			}
		case tagShelfmark:
			s := Shelfmark{
				Institution: vf.value("a"),
				Collection:  vf.value("b"),
				Country:     vf.value("n"),
				Identifier:  vf.value("p"),
			}
			if s.Institution != nil || s.Collection != nil || s.Country != nil || s.Identifier != nil {
				rec.Shelfmarks = append(rec.Shelfmarks, s)
			}
		case tagAuthor, tagCoAuthor:
			p := Person{ID: vf.value("0"), Name: vf.value("a"), Lifespan: vf.value("d")}
			if p.ID != nil || p.Name != nil || p.Lifespan != nil {
				rec.Authors = append(rec.Authors, p)
			}
		}
	}
	return rec, nil
}
