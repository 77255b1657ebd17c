package model

import "strings"

// Item is the domain model for a todo entry as the server returns it.
// Memo and ImageURL are "" when absent.
type Item struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Memo        string `json:"memo,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
}

// ItemPatch is a partial update. Nil fields are left out of the request.
type ItemPatch struct {
	Name        *string `json:"name,omitempty"`
	Memo        *string `json:"memo,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Memo == nil && p.ImageURL == nil && p.IsCompleted == nil
}

// Ptr returns a pointer to v; handy for building patches.
func Ptr[T any](v T) *T { return &v }

// ValidName reports whether name is acceptable for creation.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// Partition splits items into pending and completed, keeping order.
func Partition(items []Item) (pending, completed []Item) {
	for _, it := range items {
		if it.IsCompleted {
			completed = append(completed, it)
		} else {
			pending = append(pending, it)
		}
	}
	return
}

// Stats counts completed and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.IsCompleted {
			done++
		} else {
			pending++
		}
	}
	return
}

// Index returns the position of the item with the given id, or -1.
func Index(items []Item, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
