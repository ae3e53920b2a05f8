// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// --- Pagination ---

// PaginationRequest contains pagination parameters.
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Defaults sets default pagination values.
func (p *PaginationRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
}

// Offset calculates SQL offset.
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// --- List Response ---

// ListResponse wraps list results.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
