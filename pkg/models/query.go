package models

import (
	"fmt"
	"time"
)

// ListParams holds pagination and time filters for record listings.
type ListParams struct {
	Start *time.Time
	End   *time.Time
	Limit int
	Page  int
}

// DefaultListParams returns the first page with the default page size.
func DefaultListParams() ListParams {
	return ListParams{Limit: 100, Page: 1}
}

// Validate checks if the list parameters are valid
func (p *ListParams) Validate() error {
	if p.Limit < 1 || p.Limit > 10000 {
		return fmt.Errorf("%w: limit must be between 1 and 10000", ErrValidation)
	}

	if p.Page < 1 {
		return fmt.Errorf("%w: page must be greater than 0", ErrValidation)
	}

	if p.Start != nil && p.End != nil && p.End.Before(*p.Start) {
		return fmt.Errorf("%w: end must not be before start", ErrValidation)
	}

	return nil
}

// Offset returns the row offset of the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ListResponse is one page of records.
type ListResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Limit      int         `json:"limit"`
	HasMore    bool        `json:"has_more"`
}

// NewListResponse computes page counters for total matching records.
func NewListResponse(data interface{}, total int, params ListParams) *ListResponse {
	totalPages := (total + params.Limit - 1) / params.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	return &ListResponse{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasMore:    params.Page < totalPages,
	}
}
