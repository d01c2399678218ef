package api

// Request and response bodies of the HTTP transport.

// CreatePersonRequest is the body of POST /api/persons.
type CreatePersonRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Notes string `json:"notes,omitempty"`
}

// UpdatePersonRequest is the body of PUT /api/persons/{id}.
type UpdatePersonRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Notes    string `json:"notes,omitempty"`
	IsActive bool   `json:"is_active"`
}

// CreateConversationRequest is the body of POST /api/persons/{id}/conversations.
type CreateConversationRequest struct {
	Content string `json:"content" validate:"required"`
	Context string `json:"context,omitempty"`
}

// CreateMemoryRequest is the body of POST /api/persons/{id}/memories.
type CreateMemoryRequest struct {
	Key        string `json:"key" validate:"required,max=200"`
	Value      string `json:"value" validate:"required"`
	Importance int    `json:"importance" validate:"min=0,max=5"`
}

// IDResponse carries a backend-assigned id.
type IDResponse struct {
	ID int64 `json:"id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
