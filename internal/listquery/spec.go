// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listquery

import "slices"

// Filter is one discrete selection a list accepts. Key is the name the
// dashboard uses; Param is the query parameter the backend expects.
type Filter struct {
	Key     string
	Param   string
	Allowed []string // empty means any value
}

// accepts reports whether v is a valid selection for f.
func (f Filter) accepts(v string) bool {
	return len(f.Allowed) == 0 || slices.Contains(f.Allowed, v)
}

// Spec describes the filters and page sizes of one list page.
type Spec struct {
	Name         string
	Filters      []Filter
	DefaultLimit int
	Limits       []int // empty means any positive limit
}

// filter returns the filter registered under key or param.
func (s Spec) filter(name string) (Filter, bool) {
	for _, f := range s.Filters {
		if f.Key == name || f.Param == name {
			return f, true
		}
	}
	return Filter{}, false
}

func (s Spec) defaultLimit() int {
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return DefaultLimit
}

func (s Spec) validLimit(n int) bool {
	if n <= 0 {
		return false
	}
	return len(s.Limits) == 0 || slices.Contains(s.Limits, n)
}

var (
	PostsSpec = Spec{
		Name: "posts",
		Filters: []Filter{
			{Key: "author", Param: "authorId"},
			{Key: "status", Param: "status", Allowed: []string{"draft", "published", "archived"}},
			{Key: "category", Param: "categoryId"},
			{Key: "tag", Param: "tagId"},
			{Key: "sort", Param: "sort", Allowed: []string{"latest", "oldest", "title"}},
		},
		DefaultLimit: 10,
		Limits:       []int{5, 10, 20, 50},
	}

	// The backend spells the verification filter "emailVarified".
	UsersSpec = Spec{
		Name: "users",
		Filters: []Filter{
			{Key: "role", Param: "role", Allowed: []string{"admin", "editor", "author", "reader"}},
			{Key: "status", Param: "status", Allowed: []string{"active", "inactive", "blocked"}},
			{Key: "emailVerified", Param: "emailVarified", Allowed: []string{"true", "false"}},
		},
		DefaultLimit: 10,
		Limits:       []int{10, 20, 50, 100},
	}

	TagsSpec = Spec{Name: "tags", DefaultLimit: 10}

	CategoriesSpec = Spec{Name: "categories", DefaultLimit: 10}

	CommentsSpec = Spec{
		Name: "comments",
		Filters: []Filter{
			{Key: "status", Param: "status", Allowed: []string{"pending", "approved", "rejected", "spam", "deleted"}},
		},
		DefaultLimit: 20,
	}
)
