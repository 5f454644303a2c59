package sudoemail

// StatusKind is the state of an entity's unsealing.
type StatusKind int

const (
	StatusNotChecked StatusKind = iota
	StatusCompleted
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "NotChecked"
	}
}

// EntityStatus records whether an entity's sealed fields were unsealed.
// Cause is set only when Kind is StatusFailed.
type EntityStatus struct {
	Kind  StatusKind
	Cause error
}

// Completed returns a completed status.
func Completed() EntityStatus {
	return EntityStatus{Kind: StatusCompleted}
}

// Failed returns a failed status with the given cause.
func Failed(cause error) EntityStatus {
	return EntityStatus{Kind: StatusFailed, Cause: cause}
}

func (s EntityStatus) IsCompleted() bool { return s.Kind == StatusCompleted }
func (s EntityStatus) IsFailed() bool    { return s.Kind == StatusFailed }

func (s EntityStatus) String() string {
	if s.Kind == StatusFailed && s.Cause != nil {
		return "Failed(" + s.Cause.Error() + ")"
	}
	return s.Kind.String()
}

// Outcome is the result of unsealing a single value.
type Outcome[T any] struct {
	Value  T
	Status EntityStatus
}

// Success returns a completed Outcome holding value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value, Status: Completed()}
}

// Failure returns a failed Outcome.
func Failure[T any](cause error) Outcome[T] {
	return Outcome[T]{Status: Failed(cause)}
}

// Get returns the value, or the failure cause.
func (o Outcome[T]) Get() (T, error) {
	if o.Status.IsFailed() {
		var zero T
		return zero, o.Status.Cause
	}
	return o.Value, nil
}

// ListStatus summarizes a batch read.
type ListStatus string

const (
	// ListStatusSuccess means every item unsealed.
	ListStatusSuccess ListStatus = "Success"
	// ListStatusPartial means at least one item failed.
	ListStatusPartial ListStatus = "Partial"
)

// FailedItem is an item that failed to unseal. Its non-sealed fields are
// still populated.
type FailedItem[T any] struct {
	Item  T
	Cause error
}

// ListOutput is the result of unsealing a batch. Items and Failed keep the
// input order.
type ListOutput[T any] struct {
	Status ListStatus
	Items  []T
	Failed []FailedItem[T]
}
