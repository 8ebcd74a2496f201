package graph

import "time"

// Entry is one node's snapshot within a Report.
type Entry struct {
	// Name is the node's unique name.
	Name string `json:"name"`

	// Status is the node's effective status when the report was produced.
	Status Status `json:"status"`

	// Reason explains the status, when one was recorded.
	Reason string `json:"reason,omitempty"`
}

// Report is a snapshot of every reachable node's status at one point in
// time, plus the overall status derived from the graph's roots. Entries are
// ordered dependencies-first, matching Graph.Names. A Report is immutable
// once produced and is compared by value, never by identity.
//
// Reports marshal losslessly to JSON: statuses serialize as their string
// forms and the field names below are stable.
type Report struct {
	// OverallStatus is the worst status among the graph's roots.
	OverallStatus Status `json:"overallStatus"`

	// Timestamp records when the report was produced.
	Timestamp time.Time `json:"timestamp"`

	// Entries holds one snapshot per reachable node, dependencies first.
	Entries []Entry `json:"entries"`

	index map[string]int
}

func newReport(entries []Entry, overall Status, ts time.Time) *Report {
	r := &Report{OverallStatus: overall, Timestamp: ts, Entries: entries}
	r.index = make(map[string]int, len(entries))
	for i, e := range entries {
		r.index[e.Name] = i
	}
	return r
}

// Get returns the entry for name and whether one exists.
func (r *Report) Get(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	if r.index != nil {
		i, ok := r.index[name]
		if !ok {
			return Entry{}, false
		}
		return r.Entries[i], true
	}
	// Reports decoded from JSON carry no index.
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// StatusOf returns the status recorded for name, or StatusUnknown when the
// name is absent. A nil report has no entries.
func (r *Report) StatusOf(name string) Status {
	e, ok := r.Get(name)
	if !ok {
		return StatusUnknown
	}
	return e.Status
}

// Len returns the number of entries.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Entries)
}

// Equal reports value equality: the same overall status and the same
// (name, status, reason) entries in the same order. Timestamps are
// excluded — two passes over unchanged state produce equal reports.
func (r *Report) Equal(other *Report) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.OverallStatus != other.OverallStatus || len(r.Entries) != len(other.Entries) {
		return false
	}
	for i, e := range r.Entries {
		if e != other.Entries[i] {
			return false
		}
	}
	return true
}

// StatusChange records one name's status delta between two reports.
type StatusChange struct {
	// Name is the node whose status changed.
	Name string `json:"name"`

	// Previous is the status in the earlier report; StatusUnknown when the
	// name was absent.
	Previous Status `json:"previousStatus"`

	// Current is the status in the later report.
	Current Status `json:"currentStatus"`

	// Reason is the reason recorded with the current status.
	Reason string `json:"reason,omitempty"`
}

// Diff returns one StatusChange per name whose status in after differs from
// its status in before. A name absent from before appears with previous
// status Unknown; names present only in before are not reported. Order
// follows after's entries. Diff never fails — nil reports are empty.
func Diff(before, after *Report) []StatusChange {
	if after == nil {
		return nil
	}

	var changes []StatusChange
	for _, e := range after.Entries {
		prev := before.StatusOf(e.Name)
		if prev == e.Status {
			continue
		}
		changes = append(changes, StatusChange{
			Name:     e.Name,
			Previous: prev,
			Current:  e.Status,
			Reason:   e.Reason,
		})
	}
	return changes
}
