package page

import (
	"fmt"
	"html"

	"github.com/PuerkitoBio/goquery"
)

// MetaStore persists a value in a <meta name=... content=...> tag of the
// document.
type MetaStore struct {
	doc  *Document
	name string
}

func (d *Document) MetaStore(name string) *MetaStore {
	if name == "" {
		name = DefaultMetaName
	}
	return &MetaStore{doc: d, name: name}
}

func (m *MetaStore) Lookup() (string, bool) {
	m.doc.mu.Lock()
	defer m.doc.mu.Unlock()

	meta := m.find()
	if meta.Length() == 0 {
		return "", false
	}
	value, _ := meta.Attr("content")
	return value, true
}

// Save overwrites the meta tag, creating it in <head> when missing.
func (m *MetaStore) Save(value string) {
	m.doc.mu.Lock()
	defer m.doc.mu.Unlock()

	meta := m.find()
	if meta.Length() > 0 {
		meta.SetAttr("content", value)
		return
	}
	m.doc.head().AppendHtml(fmt.Sprintf(`<meta name="%s" content="%s">`,
		html.EscapeString(m.name),
		html.EscapeString(value),
	))
}

func (m *MetaStore) find() *goquery.Selection {
	return m.doc.doc.Find("meta").FilterFunction(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		return name == m.name
	}).First()
}
