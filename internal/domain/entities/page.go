package entities

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest asks for one page of a listing. Number is zero-based.
// Size defaults to DefaultPageSize and is capped at MaxPageSize without error;
// the resulting Page reports the capped size.
type PageRequest struct {
	Number int
	Size   int
}

// NewPageRequest builds a normalized page request.
func NewPageRequest(number, size int) PageRequest {
	return PageRequest{Number: number, Size: size}.Normalize()
}

// Normalize clamps the number to zero or more and the size to (0, MaxPageSize].
func (r PageRequest) Normalize() PageRequest {
	if r.Number < 0 {
		r.Number = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}

// Offset is the zero-based index of the first element of the page.
func (r PageRequest) Offset() int {
	return r.Number * r.Size
}

// Page is one page of results in provider order.
type Page[T any] struct {
	Content []T  `json:"content"`
	Number  int  `json:"number"`
	Size    int  `json:"size"`
	HasNext bool `json:"hasNext"`
}

// NewPage wraps content fetched for request.
func NewPage[T any](content []T, request PageRequest, hasNext bool) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{Content: content, Number: request.Number, Size: request.Size, HasNext: hasNext}
}

// SlicePage cuts the requested page out of a fully materialized listing.
func SlicePage[T any](all []T, request PageRequest) Page[T] {
	request = request.Normalize()
	start := request.Offset()
	if start >= len(all) {
		return NewPage([]T{}, request, false)
	}
	end := min(start+request.Size, len(all))
	return NewPage(all[start:end], request, end < len(all))
}
