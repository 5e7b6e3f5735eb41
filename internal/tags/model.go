package tags

// Tag is a canonical name a document can be labeled with. Names are unique
// and case-sensitive; tags are created lazily and never deleted here.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
