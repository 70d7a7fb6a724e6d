package shared

// Page is the paginated listing shape returned by list endpoints.
type Page[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int   `json:"size"`
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
}

// NewPage assembles a Page, normalising size and current.
func NewPage[T any](records []T, total int64, current, size int) Page[T] {
	if size <= 0 {
		size = 10
	}
	if current <= 0 {
		current = 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if records == nil {
		records = []T{}
	}
	return Page[T]{Records: records, Total: total, Size: size, Current: current, Pages: pages}
}

// Offset returns the row offset for the given page.
func Offset(current, size int) int {
	if current <= 1 {
		return 0
	}
	return (current - 1) * size
}
