// Package study models the study metadata: events (visits), the case report
// forms collected at each event, and the data dictionary that labels every
// column of a CRF data table.
package study

// Node types stored in meta_study_structure.type
const (
	NodeTypeEvent = "EVENT"
	NodeTypeCRF   = "CRF"
)

// Node is one row of the study structure.
type Node struct {
	Code       string
	Name       string
	ParentCode *string // event code for CRFs, nil for events
	Ordinal    int
}

// Event groups the CRFs collected at one study event.
type Event struct {
	EventCode string
	EventName string
	CRFs      []Node
}

// BuildTree attaches every CRF to the event whose code equals its parent code.
// Input order is kept, so callers pass both slices sorted by ordinal.
// CRFs whose parent is not a known event are dropped.
func BuildTree(events, crfs []Node) []Event {
	children := make(map[string][]Node, len(events))
	for _, c := range crfs {
		if c.ParentCode == nil {
			continue
		}
		children[*c.ParentCode] = append(children[*c.ParentCode], c)
	}

	tree := make([]Event, 0, len(events))
	for _, e := range events {
		list := children[e.Code]
		if list == nil {
			list = []Node{}
		}
		tree = append(tree, Event{
			EventCode: e.Code,
			EventName: e.Name,
			CRFs:      list,
		})
	}
	return tree
}
