// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page is a normalized page request.
type Page struct {
	Number int // 1-based
	Size   int
}

// NewPage clamps number to >= 1 and size to [1, maxSize], using defSize for
// a non-positive size.
func NewPage(number, size, defSize, maxSize int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = defSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// TotalPages returns ceil(total/size), and 0 for an empty listing.
func (p Page) TotalPages(total int64) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
