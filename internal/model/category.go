package model

import "fmt"

// Category pairs a category name with the folder files of that category are
// relocated into.
type Category struct {
	Name   string
	Folder string
}

// CategorySet is an ordered, read-only mapping from category name to folder
// name. It always contains a designated fallback category.
type CategorySet struct {
	folders    map[string]string
	fallback   string
	categories []Category
}

// NewCategorySet builds a CategorySet from an ordered category list. The
// fallback category is appended (with its name as folder) if the list does not
// already contain it.
func NewCategorySet(categories []Category, fallback string) (*CategorySet, error) {
	if fallback == "" {
		return nil, fmt.Errorf("fallback category name cannot be empty")
	}

	set := &CategorySet{
		folders:  make(map[string]string, len(categories)+1),
		fallback: fallback,
	}

	for _, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category name cannot be empty")
		}
		if _, exists := set.folders[cat.Name]; exists {
			return nil, fmt.Errorf("duplicate category %q", cat.Name)
		}
		folder := cat.Folder
		if folder == "" {
			folder = cat.Name
		}
		set.folders[cat.Name] = folder
		set.categories = append(set.categories, Category{Name: cat.Name, Folder: folder})
	}

	if _, ok := set.folders[fallback]; !ok {
		set.folders[fallback] = fallback
		set.categories = append(set.categories, Category{Name: fallback, Folder: fallback})
	}

	return set, nil
}

// FolderFor returns the folder name for a category and whether the category is
// part of the set.
func (s *CategorySet) FolderFor(name string) (string, bool) {
	folder, ok := s.folders[name]
	return folder, ok
}

// Contains reports whether the named category is part of the set.
func (s *CategorySet) Contains(name string) bool {
	_, ok := s.folders[name]
	return ok
}

// Fallback returns the name of the always-present catch-all category.
func (s *CategorySet) Fallback() string {
	return s.fallback
}

// Names returns the category names in configuration order.
func (s *CategorySet) Names() []string {
	names := make([]string, len(s.categories))
	for i, cat := range s.categories {
		names[i] = cat.Name
	}
	return names
}

// Categories returns a copy of the ordered category list.
func (s *CategorySet) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}
