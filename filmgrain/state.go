package filmgrain

import (
	"fmt"
)

type State int

const (
	StateInit = State(iota)
	StateMaskBuilt
	StateBlockAnalyzed
	StateCurveFit
	StateQuantized
	StateModelReady
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateMaskBuilt:
		return "mask_built"
	case StateBlockAnalyzed:
		return "block_analyzed"
	case StateCurveFit:
		return "curve_fit"
	case StateQuantized:
		return "quantized"
	case StateModelReady:
		return "model_ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
