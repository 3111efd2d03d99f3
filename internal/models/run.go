package models

// ItemFailure describes one candidate that could not be persisted.
type ItemFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// PathResult is the outcome of one fetch-extract-reconcile cycle.
type PathResult struct {
	Path     string        `json:"path"`
	Category *string       `json:"category"`
	Success  bool          `json:"success"`
	Count    *int          `json:"count,omitempty"`
	Error    string        `json:"error,omitempty"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// RunResult aggregates every path processed by one scrape invocation.
type RunResult struct {
	Site    string       `json:"-"`
	Success bool         `json:"success"`
	Results []PathResult `json:"results"`
}
