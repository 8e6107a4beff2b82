package model

// Item is a todo entry as the server returns it.
// ID and CreatedAt are server-assigned; CreatedAt stays a string because the
// server owns its format.
type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

// CreateRequest is the body of POST /todos.
type CreateRequest struct {
	Text string `json:"text"`
}

// UpdateRequest is the body of PUT /todos/{id}. Nil fields are not sent and
// the server leaves them unchanged.
type UpdateRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// SetText returns an update that only changes the text.
func SetText(text string) UpdateRequest {
	return UpdateRequest{Text: &text}
}

// SetCompleted returns an update that only changes the completed flag.
func SetCompleted(done bool) UpdateRequest {
	return UpdateRequest{Completed: &done}
}

// DeleteResponse is the body of a successful DELETE /todos/{id}.
type DeleteResponse struct {
	Message string `json:"message"`
}
