package validator

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"snippethub-backend/internal/shared/utils"
)

// Reusable field rules shared by feature DTOs so schemas compose instead of
// redeclaring the same checks.

// UUIDRule validates canonical hyphenated UUID strings.
var UUIDRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil // pair with validation.Required where needed
	}
	if !utils.IsValidUUID(s) {
		return errors.New("must be a valid UUID")
	}
	return nil
})

// EmailRule validates e-mail addresses.
var EmailRule = is.Email.Error("invalid email format")

// URLRule validates absolute URLs.
var URLRule = is.URL.Error("invalid URL format")

// PhoneRule validates E.164 phone numbers (e.g. +14155552671).
var PhoneRule = is.E164.Error("phone must be in E.164 format")

// SortOrders accepted by list endpoints.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// PaginationQuery is the normalized page/limit pair every list endpoint uses.
type PaginationQuery struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// Normalize applies defaults and caps so downstream code never sees
// zero or runaway values.
func (p *PaginationQuery) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p PaginationQuery) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Min(1)),
		validation.Field(&p.Limit, validation.Min(1), validation.Max(100)),
	)
}

// Offset converts page/limit into a SQL offset.
func (p PaginationQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SortQuery is the sortBy/order pair; allowed fields are endpoint-specific.
type SortQuery struct {
	SortBy string `json:"sortBy" form:"sortBy"`
	Order  string `json:"order" form:"order"`
}

func (s SortQuery) ValidateAgainst(allowedFields ...interface{}) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SortBy, validation.In(allowedFields...).Error("unsupported sort field")),
		validation.Field(&s.Order, validation.In(OrderAsc, OrderDesc).Error("order must be asc or desc")),
	)
}

// DateRangeQuery bounds a created/published window. Zero values mean unbounded.
type DateRangeQuery struct {
	From time.Time `json:"from" form:"from" time_format:"2006-01-02"`
	To   time.Time `json:"to" form:"to" time_format:"2006-01-02"`
}

func (d DateRangeQuery) Validate() error {
	if !d.From.IsZero() && !d.To.IsZero() && d.To.Before(d.From) {
		return validation.Errors{"to": errors.New("must not be before from")}
	}
	return nil
}

func (d DateRangeQuery) IsZero() bool {
	return d.From.IsZero() && d.To.IsZero()
}

// SearchQuery is a free-text search term.
type SearchQuery struct {
	Search string `json:"search" form:"search"`
}

func (s SearchQuery) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Search, validation.Length(0, 200)),
	)
}
