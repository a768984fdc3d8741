package model

// Response is the JSON envelope of every API reply
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// NewErrorResponse builds a failed envelope with a machine readable code
func NewErrorResponse(message, code string) Response {
	return Response{Success: false, Message: message, Code: code}
}

// NewValidationResponse builds a failed envelope carrying per-field details
func NewValidationResponse(message string, fields map[string]string) Response {
	return Response{Success: false, Message: message, Code: "ValidationError", Fields: fields}
}
