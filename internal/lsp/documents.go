package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

type document struct {
	text    string
	version protocol.Integer
}

// documentStore holds the text of open documents.
type documentStore struct {
	sync.RWMutex
	docs map[protocol.DocumentUri]document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[protocol.DocumentUri]document)}
}

func (s *documentStore) open(uri protocol.DocumentUri, version protocol.Integer, text string) {
	s.Lock()
	defer s.Unlock()
	s.docs[uri] = document{text: text, version: version}
}

// change applies content changes in order. Changes without a range replace
// the whole document.
func (s *documentStore) change(uri protocol.DocumentUri, version protocol.Integer, changes []any) bool {
	s.Lock()
	defer s.Unlock()

	doc, ok := s.docs[uri]
	if !ok {
		return false
	}
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			doc.text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				doc.text = c.Text
				continue
			}
			start := byteOffset(doc.text, c.Range.Start)
			end := byteOffset(doc.text, c.Range.End)
			if end < start {
				start, end = end, start
			}
			doc.text = doc.text[:start] + c.Text + doc.text[end:]
		}
	}
	doc.version = version
	s.docs[uri] = doc
	return true
}

func (s *documentStore) close(uri protocol.DocumentUri) {
	s.Lock()
	defer s.Unlock()
	delete(s.docs, uri)
}

func (s *documentStore) get(uri protocol.DocumentUri) (string, bool) {
	s.RLock()
	defer s.RUnlock()
	doc, ok := s.docs[uri]
	return doc.text, ok
}

func (s *documentStore) len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.docs)
}
