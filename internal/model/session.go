package model

import "time"

// Session is one crawl run over a network.
// The crawler mutates Network, Queue and Stats; nothing else touches
// them while the run is in progress.
type Session struct {
	// Name labels the run, e.g. the persist name it is saved under.
	Name string `json:"name,omitempty"`

	// Mode is "outer" or "inner".
	Mode string `json:"mode"`

	// Seeds are the titles the run started from. For an inner run these
	// are the titles of the fixed node set.
	Seeds []string `json:"seeds"`

	// Network is the graph built so far.
	Network *Network `json:"network"`

	// Queue holds the titles that were still pending when the run ended.
	// Only the pending items are persisted.
	Queue *Queue `json:"-"`

	// Pending is a snapshot of Queue taken by Finish.
	Pending []string `json:"pending,omitempty"`

	// Stats counts visit outcomes.
	Stats Stats `json:"stats"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Interrupted is true if the run was cancelled before the queue drained
	// or the page limit was reached.
	Interrupted bool `json:"interrupted"`
}

// Stats counts what happened to each visited title.
type Stats struct {
	Visited         int `json:"visited"`
	Inserted        int `json:"inserted"`
	AlreadyVisited  int `json:"already_visited"`
	Aliases         int `json:"aliases"`
	Disambiguations int `json:"disambiguations"`
	Dropped         int `json:"dropped"`
	Missing         int `json:"missing"`
	RedirectErrors  int `json:"redirect_errors"`
	FetchFailures   int `json:"fetch_failures"`
	EnqueuedTitles  int `json:"enqueued_titles"`
}

// NewSession creates a session with an empty network and a queue
// holding seeds.
func NewSession(mode string, seeds []string) *Session {
	s := &Session{
		Mode:      mode,
		Seeds:     append([]string(nil), seeds...),
		Network:   NewNetwork(),
		Queue:     NewQueue(seeds...),
		StartedAt: time.Now(),
	}
	return s
}

// Finish stamps the end time and snapshots the pending queue.
func (s *Session) Finish() {
	s.FinishedAt = time.Now()
	if s.Queue != nil {
		s.Pending = s.Queue.Items()
	}
}

// Duration returns how long the run took. It is zero until Finish is called.
func (s *Session) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
