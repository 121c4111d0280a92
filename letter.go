package emptyletters

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// letter is the root of the generated document.
type letter struct {
	XMLName     xml.Name `xml:"letter"`
	CatalogueID string   `xml:"catalogue_id,attr"`
	Date        string   `xml:"date,attr"`
	Metadata    struct {
		Places     []place     `xml:"place"`
		Footnotes  []string    `xml:"footnote"`
		Shelfmarks []shelfmark `xml:"shelfmark"`
	} `xml:"metadata"`
	Persons struct {
		Author struct {
			Persons []person `xml:"person"`
		} `xml:"author"`
	} `xml:"persons"`
}

type place struct {
	Name string  `xml:"name"`
	ID   *string `xml:"id,omitempty"`
}

type shelfmark struct {
	Institution *string `xml:"institution,omitempty"`
	Collection  *string `xml:"collection,omitempty"`
	Country     *string `xml:"country,omitempty"`
	Identifier  *string `xml:"identifier,omitempty"`
}

type person struct {
	ID       *string `xml:"id,omitempty"`
	Name     *string `xml:"name,omitempty"`
	Lifespan *string `xml:"lifespan,omitempty"`
}

// present drops blank optional values.
func present(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Render returns the letter document for a record, including the XML
// declaration. The output only depends on its arguments.
func Render(number string, rec Record) ([]byte, error) {
	doc := letter{CatalogueID: number}
	doc.Date, _ = rec.Date()
	for _, p := range rec.Places {
		doc.Metadata.Places = append(doc.Metadata.Places, place{Name: p.Name, ID: present(p.ID)})
	}
	for _, f := range rec.Footnotes {
		if strings.TrimSpace(f) != "" {
			doc.Metadata.Footnotes = append(doc.Metadata.Footnotes, f)
		}
	}
	for _, s := range rec.Shelfmarks {
		doc.Metadata.Shelfmarks = append(doc.Metadata.Shelfmarks, shelfmark{
			Institution: present(s.Institution),
			Collection:  present(s.Collection),
			Country:     present(s.Country),
			Identifier:  present(s.Identifier),
		})
	}
	for _, a := range rec.Authors {
		doc.Persons.Author.Persons = append(doc.Persons.Author.Persons, person{
			ID:       present(a.ID),
			Name:     present(a.Name),
			Lifespan: present(a.Lifespan),
		})
	}
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(b)+1)
	out = append(out, xml.Header...)
	out = append(out, b...)
	return append(out, '\n'), nil
}

// OutputPath returns the location of the letter for a number.
func OutputPath(dir, number string) (string, error) {
	if !ValidNumber(number) {
		return "", ErrBadNumber
	}
	return filepath.Join(dir, number+".xml"), nil
}

// Emit renders a record and writes it to dir, replacing any previous
// version. It returns false without an error, if no letter can be generated
// for the number at all.
func Emit(number string, rec Record, dir string) (bool, error) {
	pth, err := OutputPath(dir, number)
	if err != nil {
		log.WithField("number", number).Warn("skipping letter for unusable number")
		return false, nil
	}
	b, err := Render(number, rec)
	if err != nil {
		return false, err
	}
	if err := WriteFileAtomic(pth, b, 0644); err != nil {
		return false, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	log.WithFields(log.Fields{"number": number, "path": pth}).Debug("letter written")
	return true, nil
}
