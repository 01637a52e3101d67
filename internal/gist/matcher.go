package gist

// FindOwner returns the first document in docs that contains filename.
// Absence is not an error.
func FindOwner(docs []Document, filename string) (*Document, bool) {
	for i := range docs {
		if docs[i].HasFile(filename) {
			owner := docs[i]
			return &owner, true
		}
	}
	return nil, false
}

// Owners returns every document in docs that contains filename, in listing order
func Owners(docs []Document, filename string) []Document {
	var owners []Document
	for _, doc := range docs {
		if doc.HasFile(filename) {
			owners = append(owners, doc)
		}
	}
	return owners
}

// IDs returns the identifiers of docs in order
func IDs(docs []Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids
}
