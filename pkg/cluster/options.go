package cluster

// Option configures a propagation run.
type Option func(*config)

type config struct {
	reporter  Reporter
	maxSweeps int
	observer  any // func(Change[K]) for the run's key type
}

func newConfig(opts []Option) *config {
	cfg := &config{reporter: NopReporter{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithReporter sets the progress sink. A nil reporter disables reporting.
func WithReporter(r Reporter) Option {
	return func(c *config) {
		if r == nil {
			r = NopReporter{}
		}
		c.reporter = r
	}
}

// WithMaxSweeps caps the number of sweeps. Zero or negative means no cap.
// When the cap is reached and the last sweep still changed labels, the run
// fails with ErrNotConverged.
func WithMaxSweeps(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.maxSweeps = n
	}
}

// Change records a single label update.
type Change[K Integer] struct {
	Sweep int // sweep in which the update happened
	Key   K   // destination key whose label was lowered
	From  K   // label before the update
	To    K   // label after the update
}

// WithObserver registers fn to be called for every label update. The key
// type of fn must match the key type of the run; a mismatch is reported as
// an invalid-input error by Propagate.
func WithObserver[K Integer](fn func(Change[K])) Option {
	return func(c *config) {
		if fn != nil {
			c.observer = fn
		}
	}
}
