package task

// DeriveAggregateStatus summarizes a set of task statuses into one status.
// The result depends only on which distinct statuses are present, never on
// order or multiplicity, and is never persisted.
//
// Priority: in_progress > blocked > planned > todo > (all deferred) > done > deferred.
// An empty set is todo; a set of only cancelled tasks is cancelled.
func DeriveAggregateStatus(statuses []Status) Status {
	present := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		if s.IsValid() {
			present[s] = true
		}
	}

	if len(present) == 0 {
		return StatusTodo
	}
	if len(present) == 1 && present[StatusCancelled] {
		return StatusCancelled
	}

	for _, s := range []Status{StatusInProgress, StatusBlocked, StatusPlanned, StatusTodo} {
		if present[s] {
			return s
		}
	}
	if len(present) == 1 && present[StatusDeferred] {
		return StatusDeferred
	}
	if present[StatusDone] {
		return StatusDone
	}
	if present[StatusDeferred] {
		return StatusDeferred
	}
	return StatusTodo
}
