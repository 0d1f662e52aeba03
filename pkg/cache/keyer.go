package cache

// Keyer derives cache keys. Implementations must produce different keys for
// any inputs that could produce different results.
type Keyer interface {
	// ClusterKey identifies a propagation result over inputs with the given
	// content hash.
	ClusterKey(inputHash string, opts ClusterKeyOpts) string

	// ValidationKey identifies a batch ISBN validation result.
	ValidationKey(inputHash string) string
}

// ClusterKeyOpts holds the run options that change propagation output.
type ClusterKeyOpts struct {
	MaxSweeps int  `json:"max_sweeps"`
	Symmetric bool `json:"symmetric"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ClusterKey implements Keyer.
func (DefaultKeyer) ClusterKey(inputHash string, opts ClusterKeyOpts) string {
	return hashKey("cluster", inputHash, opts)
}

// ValidationKey implements Keyer.
func (DefaultKeyer) ValidationKey(inputHash string) string {
	return hashKey("isbn", inputHash)
}

var _ Keyer = DefaultKeyer{}
