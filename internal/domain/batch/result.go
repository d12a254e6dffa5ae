package batch

// ItemStatus is the ingestion outcome of a single document.
type ItemStatus string

// Batch item status values.
const (
	StatusAdded     ItemStatus = "added"
	StatusDuplicate ItemStatus = "duplicate"
	StatusError     ItemStatus = "error"
)

// Result is the outcome of ingesting one document URL.
type Result struct {
	url    string
	status ItemStatus
	err    error
}

// NewAdded creates a result for a document appended to the store.
func NewAdded(url string) Result { return Result{url: url, status: StatusAdded} }

// NewDuplicate creates a result for a document already present in the store.
func NewDuplicate(url string) Result { return Result{url: url, status: StatusDuplicate} }

// NewError creates a failed result.
func NewError(url string, err error) Result { return Result{url: url, status: StatusError, err: err} }

// URL returns the document URL.
func (r Result) URL() string { return r.url }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count returns how many results have the given status.
func Count(results []Result, status ItemStatus) int {
	n := 0
	for _, r := range results {
		if r.status == status {
			n++
		}
	}
	return n
}
