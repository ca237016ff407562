package post

import "sort"

// Registry holds the posts of one pass, newest first. It is not safe for
// concurrent use.
type Registry struct {
	posts []*Post
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert appends p and re-sorts by publish date, descending. Relative order of
// posts sharing a date is not guaranteed.
func (r *Registry) Insert(p *Post) {
	r.posts = append(r.posts, p)
	sort.SliceStable(r.posts, func(i, j int) bool {
		return r.posts[i].PublishDate.After(r.posts[j].PublishDate)
	})
}

// Snapshot returns the registry's posts without copying them. The slice is
// capacity-clipped, so appending to it never writes into the registry.
func (r *Registry) Snapshot() []*Post {
	return r.posts[:len(r.posts):len(r.posts)]
}

// Len reports the number of posts.
func (r *Registry) Len() int {
	return len(r.posts)
}
