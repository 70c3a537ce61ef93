package crawler

// State is where the crawl currently is.
type State int32

const (
	StateIdle State = iota
	StateFetchingUsers
	StateProcessingUser
	StateFetchingRepos
	StateProcessingRepo
	StateFetchingTree
	StateExtractingFiles
	StateExporting
	StateDone
	StateError
)

var stateNames = map[State]string{
	StateIdle:            "Idle",
	StateFetchingUsers:   "FetchingUsers",
	StateProcessingUser:  "ProcessingUser",
	StateFetchingRepos:   "FetchingRepos",
	StateProcessingRepo:  "ProcessingRepo",
	StateFetchingTree:    "FetchingTree",
	StateExtractingFiles: "ExtractingFiles",
	StateExporting:       "Exporting",
	StateDone:            "Done",
	StateError:           "Error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
