// Package listview holds the todo list view state and reconciles it with
// server responses. It knows nothing about rendering.
//
// The cached items are never edited locally: they are replaced on load and
// patched only with objects the server returned. State is not safe for
// concurrent use; apply results from a single goroutine.
package listview

import (
	"context"
	"fmt"
	"strings"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/model"
)

// EmptyMessage is shown when there are no items.
const EmptyMessage = "No TODO items yet. Add one above!"

// State is one list view instance.
type State struct {
	Items   []model.Item
	Input   string // pending text of the add field
	Loading bool   // true only during the initial load
	Err     string // latest error; cleared by the next success
}

// New returns a view that has not loaded yet.
func New() *State {
	return &State{Loading: true}
}

// ---------------------------------------------------
// Reconciliation
// ---------------------------------------------------

// BeginLoad enters the loading state and clears any error.
func (s *State) BeginLoad() {
	s.Loading = true
	s.Err = ""
}

// ApplyLoad ends loading. On failure or a null body the previous items stay.
func (s *State) ApplyLoad(res api.Result[[]model.Item]) {
	s.Loading = false
	if !res.IsOK() {
		s.Err = res.Err()
		return
	}
	if !res.HasData() {
		return
	}
	items := res.Data()
	if items == nil {
		items = []model.Item{}
	}
	s.Items = items
}

// ApplyCreate appends the created item and clears the input. On failure the
// input is kept so the user can retry. A null body changes nothing.
func (s *State) ApplyCreate(res api.Result[model.Item]) {
	if !res.IsOK() {
		s.Err = res.Err()
		return
	}
	if !res.HasData() {
		return
	}
	s.Items = append(s.Items, res.Data())
	s.Input = ""
	s.Err = ""
}

// ApplyUpdate replaces the item with id in place with the server's copy.
// A null body changes nothing.
func (s *State) ApplyUpdate(id string, res api.Result[model.Item]) {
	if !res.IsOK() {
		s.Err = res.Err()
		return
	}
	if !res.HasData() {
		return
	}
	updated := res.Data()
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items[i] = updated
		}
	}
	s.Err = ""
}

// ApplyDelete removes the item with id.
func (s *State) ApplyDelete(id string, res api.Result[model.DeleteResponse]) {
	if !res.IsOK() {
		s.Err = res.Err()
		return
	}
	kept := make([]model.Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.Items = kept
	s.Err = ""
}

// ---------------------------------------------------
// Request builders
// ---------------------------------------------------

// CreateRequest builds the request for the pending input. ok is false when
// the trimmed input is empty and nothing should be sent.
func (s *State) CreateRequest() (model.CreateRequest, bool) {
	text := strings.TrimSpace(s.Input)
	if text == "" {
		return model.CreateRequest{}, false
	}
	return model.CreateRequest{Text: text}, true
}

// ToggleRequest asks the server to flip its completed flag.
func ToggleRequest(it model.Item) model.UpdateRequest {
	return model.SetCompleted(!it.Completed)
}

// RenameRequest builds a text update; ok is false for blank text.
func RenameRequest(text string) (model.UpdateRequest, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.UpdateRequest{}, false
	}
	return model.SetText(text), true
}

// ---------------------------------------------------
// Synchronous drivers
// ---------------------------------------------------

// Load fetches the full list.
func (s *State) Load(ctx context.Context, c api.Client) {
	s.BeginLoad()
	s.ApplyLoad(c.List(ctx))
}

// Add creates an item from Input. It reports whether a request was sent.
func (s *State) Add(ctx context.Context, c api.Client) bool {
	req, ok := s.CreateRequest()
	if !ok {
		return false
	}
	s.ApplyCreate(c.Create(ctx, req))
	return true
}

// Toggle flips the completed flag of it on the server.
func (s *State) Toggle(ctx context.Context, c api.Client, it model.Item) {
	s.ApplyUpdate(it.ID, c.Update(ctx, it.ID, ToggleRequest(it)))
}

// Rename changes the text of the item with id. It reports whether a request
// was sent.
func (s *State) Rename(ctx context.Context, c api.Client, id, text string) bool {
	req, ok := RenameRequest(text)
	if !ok {
		return false
	}
	s.ApplyUpdate(id, c.Update(ctx, id, req))
	return true
}

// Delete removes the item with id on the server.
func (s *State) Delete(ctx context.Context, c api.Client, id string) {
	s.ApplyDelete(id, c.Delete(ctx, id))
}

// ---------------------------------------------------
// Derived values
// ---------------------------------------------------

// Stats returns the completed and total counts.
func (s *State) Stats() (completed, total int) {
	for _, it := range s.Items {
		if it.Completed {
			completed++
		}
	}
	return completed, len(s.Items)
}

// Summary renders the stats line, e.g. "1 of 3 completed".
func (s *State) Summary() string {
	c, n := s.Stats()
	return fmt.Sprintf("%d of %d completed", c, n)
}

// Empty reports whether the empty-state message applies.
func (s *State) Empty() bool { return len(s.Items) == 0 }

// Find returns the cached item with id.
func (s *State) Find(id string) (model.Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

// At returns the item at a 1-based position, as shown in listings.
func (s *State) At(userIndex int) (model.Item, error) {
	if userIndex < 1 || userIndex > len(s.Items) {
		return model.Item{}, fmt.Errorf("index out of range: have %d, got %d", len(s.Items), userIndex)
	}
	return s.Items[userIndex-1], nil
}
