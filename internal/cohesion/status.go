package cohesion

// StageStatus is the closed set of per-stage audit outcomes.
type StageStatus string

const (
	StatusComplete   StageStatus = "complete"
	StatusReady      StageStatus = "ready"
	StatusConfigured StageStatus = "configured"
	StatusPartial    StageStatus = "partial"
	StatusIncomplete StageStatus = "incomplete"
	StatusMissing    StageStatus = "missing"
	StatusFailed     StageStatus = "failed"
)

// Score maps a status to its fixed numeric score. The mapping is policy,
// not statistics, and must stay identical across runs for comparability:
// complete is 100, any partially-configured state is 80, everything else
// is 40.
func (s StageStatus) Score() float64 {
	switch s {
	case StatusComplete:
		return 100
	case StatusReady, StatusConfigured, StatusPartial:
		return 80
	default:
		return 40
	}
}

// IsGap reports whether the status names a hard gap in the pipeline.
func (s StageStatus) IsGap() bool {
	switch s {
	case StatusIncomplete, StatusMissing, StatusFailed:
		return true
	default:
		return false
	}
}

// Pillar weights for the composite score.
const (
	weightDataFlow    = 0.4
	weightIntegration = 0.3
	weightOutput      = 0.3
)

// Integration checks count satisfied booleans out of three.
const perCheckWeight = 33.33
