// Package index builds and holds the in-memory inverted index. Terms map to
// posting lists ordered by document ingestion order; document identifiers are
// explicit, monotonically increasing, and assigned at ingestion time.
package index

import (
	"sort"

	"github.com/searchlab/retrieval-eval-platform/internal/analyzer"
)

// Document is a corpus entry: its identifier, raw text, and normalized term
// sequence. Immutable once created.
type Document struct {
	ID    int
	Text  string
	Terms []string
}

// Posting records one term's occurrence count within one document.
type Posting struct {
	DocID int `json:"doc_id"`
	Count int `json:"count"`
}

// PostingList is the ordered postings for a single term, in document
// ingestion order. No document appears twice in one list.
type PostingList []Posting

// Index is the term → posting-list mapping for one ingestion batch, plus the
// documents themselves and per-document length stats.
type Index struct {
	postings   map[string]PostingList
	docs       map[int]Document
	docLengths map[int]int
	nextID     int
	totalTerms int64
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		postings:   make(map[string]PostingList),
		docs:       make(map[int]Document),
		docLengths: make(map[int]int),
	}
}

// Build constructs an Index from an ordered batch of raw document texts.
// Identifiers are assigned 1-based in input order. An empty batch yields an
// empty index.
func Build(texts []string) *Index {
	idx := New()
	for _, text := range texts {
		idx.AddDocument(text)
	}
	return idx
}

// AddDocument normalizes text, assigns the next document identifier, and
// appends one posting per distinct term. A term already posted for this
// document has its count incremented instead of gaining a duplicate entry.
func (idx *Index) AddDocument(text string) Document {
	idx.nextID++
	terms := analyzer.Analyze(text)
	doc := Document{
		ID:    idx.nextID,
		Text:  text,
		Terms: terms,
	}

	counts := make(map[string]int, len(terms))
	order := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, seen := counts[term]; !seen {
			order = append(order, term)
		}
		counts[term]++
	}
	for _, term := range order {
		idx.postings[term] = append(idx.postings[term], Posting{
			DocID: doc.ID,
			Count: counts[term],
		})
	}

	idx.docs[doc.ID] = doc
	idx.docLengths[doc.ID] = len(terms)
	idx.totalTerms += int64(len(terms))
	return doc
}

// Postings returns the posting list for a term, or nil when the term does not
// occur in any document.
func (idx *Index) Postings(term string) PostingList {
	return idx.postings[term]
}

// Document returns the document with the given identifier.
func (idx *Index) Document(id int) (Document, bool) {
	doc, ok := idx.docs[id]
	return doc, ok
}

// Terms returns all indexed terms in lexicographic order.
func (idx *Index) Terms() []string {
	terms := make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// DocCount returns the number of indexed documents.
func (idx *Index) DocCount() int {
	return len(idx.docs)
}

// TermCount returns the number of distinct terms in the index.
func (idx *Index) TermCount() int {
	return len(idx.postings)
}

// DocLength returns the normalized term count of the given document.
func (idx *Index) DocLength(id int) int {
	return idx.docLengths[id]
}

// AvgDocLength returns the mean normalized document length, or 0 for an
// empty index.
func (idx *Index) AvgDocLength() float64 {
	if len(idx.docs) == 0 {
		return 0
	}
	return float64(idx.totalTerms) / float64(len(idx.docs))
}
