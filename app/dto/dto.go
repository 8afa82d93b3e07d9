package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// PaginationRequest represents the common paging query parameters
type PaginationRequest struct {
	Page  int `json:"page" validate:"omitempty,gte=1"`
	Limit int `json:"limit" validate:"omitempty,gte=1,lte=200"`
}

// Offset returns the row offset for the requested page
func (p PaginationRequest) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
