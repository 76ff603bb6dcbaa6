package web

// Page is one slice of a paginated sequence.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Paginate returns page number (1-based) of items split into pages of size.
//
// Pages past the end are empty rather than an error. Numbers below 1 are treated as 1
// and a size below 1 as 1.
func Paginate[T any](items []T, number, size int) Page[T] {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}

	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}

	if number > p.TotalPages {
		return p
	}
	start := (number - 1) * size
	end := min(start+size, total)
	p.Items = items[start:end]
	return p
}
