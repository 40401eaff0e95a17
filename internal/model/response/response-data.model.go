package response

type ResponseData struct {
	Ec      int          `json:"ec"`
	Msg     string       `json:"msg,omitempty"`
	Error   string       `json:"error,omitempty"`
	Hint    string       `json:"hint,omitempty"`
	Details []FieldError `json:"details,omitempty"`
	Total   *int         `json:"total,omitempty"`
	Data    any          `json:"data,omitempty"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
