package index

import (
	"reflect"
	"testing"
)

var sampleCorpus = []string{
	"the cat sat",
	"the dog ran",
	"cats and dogs",
}

func TestBuildAssignsMonotonicIDs(t *testing.T) {
	idx := Build(sampleCorpus)

	if got := idx.DocCount(); got != 3 {
		t.Fatalf("DocCount() = %d, want 3", got)
	}
	for id := 1; id <= 3; id++ {
		doc, ok := idx.Document(id)
		if !ok {
			t.Fatalf("Document(%d) not found", id)
		}
		if doc.ID != id {
			t.Errorf("Document(%d).ID = %d", id, doc.ID)
		}
		if doc.Text != sampleCorpus[id-1] {
			t.Errorf("Document(%d).Text = %q, want %q", id, doc.Text, sampleCorpus[id-1])
		}
	}
}

func TestPostingsShareStemmedTerm(t *testing.T) {
	idx := Build(sampleCorpus)

	// "cat" and "cats" stem to the same term, so documents 1 and 3 share
	// a posting list.
	postings := idx.Postings("cat")
	want := PostingList{{DocID: 1, Count: 1}, {DocID: 3, Count: 1}}
	if !reflect.DeepEqual(postings, want) {
		t.Errorf("Postings(cat) = %v, want %v", postings, want)
	}

	if got := idx.Postings("dog"); len(got) != 2 || got[0].DocID != 2 || got[1].DocID != 3 {
		t.Errorf("Postings(dog) = %v, want docs 2 and 3", got)
	}
}

func TestPostingsAbsentTerm(t *testing.T) {
	idx := Build(sampleCorpus)
	if got := idx.Postings("zebra"); got != nil {
		t.Errorf("Postings(zebra) = %v, want nil", got)
	}
}

func TestAddDocumentCountsRepeatedTerms(t *testing.T) {
	idx := New()
	doc := idx.AddDocument("cat cat cat dog")

	postings := idx.Postings("cat")
	if len(postings) != 1 {
		t.Fatalf("expected one posting for repeated term, got %d", len(postings))
	}
	if postings[0].DocID != doc.ID || postings[0].Count != 3 {
		t.Errorf("Postings(cat)[0] = %+v, want {DocID:%d Count:3}", postings[0], doc.ID)
	}
	if got := idx.DocLength(doc.ID); got != 4 {
		t.Errorf("DocLength(%d) = %d, want 4", doc.ID, got)
	}
}

func TestAddDocumentEmptyTextStillGetsID(t *testing.T) {
	idx := New()
	idx.AddDocument("cat")
	empty := idx.AddDocument("")
	next := idx.AddDocument("dog")

	if empty.ID != 2 || next.ID != 3 {
		t.Errorf("IDs = %d, %d, want 2, 3", empty.ID, next.ID)
	}
	if got := idx.DocLength(empty.ID); got != 0 {
		t.Errorf("DocLength of empty doc = %d, want 0", got)
	}
}

func TestTermsSorted(t *testing.T) {
	idx := Build([]string{"zebra apple mango"})
	want := []string{"appl", "mango", "zebra"}
	if got := idx.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := Build(nil)
	if got := idx.DocCount(); got != 0 {
		t.Errorf("DocCount() = %d, want 0", got)
	}
	if got := idx.TermCount(); got != 0 {
		t.Errorf("TermCount() = %d, want 0", got)
	}
	if got := idx.AvgDocLength(); got != 0 {
		t.Errorf("AvgDocLength() = %v, want 0", got)
	}
}

func TestAvgDocLength(t *testing.T) {
	idx := Build([]string{"cat sat", "dog ran fast home"})
	if got := idx.AvgDocLength(); got != 3 {
		t.Errorf("AvgDocLength() = %v, want 3", got)
	}
}
