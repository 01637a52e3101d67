package sync

// State is a step of a sync run
type State int

// Sync runs move through these states in order, ending in Done or Failed
const (
	Start State = iota
	ResolvingBranch
	FetchingReport
	ListingDocuments
	Matching
	Publishing
	Done
	Failed
)

var stateNames = map[State]string{
	Start:            "start",
	ResolvingBranch:  "resolving-branch",
	FetchingReport:   "fetching-report",
	ListingDocuments: "listing-documents",
	Matching:         "matching",
	Publishing:       "publishing",
	Done:             "done",
	Failed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
