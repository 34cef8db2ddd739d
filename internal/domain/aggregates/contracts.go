package aggregates

// LockScope names the row a write serializes on.
type LockScope string

const (
	// LockNone means the write relies on insert atomicity alone.
	LockNone LockScope = "none"
	// LockEnrollment means the enrollment row is locked before its progress is rewritten.
	LockEnrollment LockScope = "enrollment"
	// LockCourse means the course row is locked first, then its enrollments.
	LockCourse LockScope = "course"
)

// Contract describes what an aggregate promises to its callers.
type Contract struct {
	Name  string
	Lock  LockScope
	Kinds []ErrorKind
	Notes string
}

// Aggregate is the common marker for all aggregate contracts.
type Aggregate interface {
	Contract() Contract
}

// Declares reports whether k is a kind the aggregate may return.
// Transient store failures are implied by every contract.
func (c Contract) Declares(k ErrorKind) bool {
	if k == KindTxTimeout || k == KindStoreUnavailable {
		return true
	}
	for _, d := range c.Kinds {
		if d == k {
			return true
		}
	}
	return false
}
