package eth

import "sync"

// GasLimitHolder keeps a gas limit floor which grows towards max after every
// failed submission and falls back to min after a successful one.
type GasLimitHolder struct {
	currentGasLimit uint64
	minGasLimit     uint64
	maxGasLimit     uint64
	increment       uint64
	lock            sync.Mutex
}

func NewGasLimitHolder(minGL uint64, maxGL uint64, steps uint64) *GasLimitHolder {
	if steps == 0 {
		steps = 1
	}

	if maxGL < minGL {
		maxGL = minGL
	}

	return &GasLimitHolder{
		currentGasLimit: minGL,
		minGasLimit:     minGL,
		maxGasLimit:     maxGL,
		increment:       (maxGL - minGL + steps - 1) / steps,
	}
}

func (glh *GasLimitHolder) Update(err error) {
	glh.lock.Lock()
	defer glh.lock.Unlock()

	if err != nil {
		glh.currentGasLimit = min(glh.maxGasLimit, glh.currentGasLimit+glh.increment)
	} else {
		glh.currentGasLimit = glh.minGasLimit
	}
}

func (glh *GasLimitHolder) GetGasLimit() uint64 {
	glh.lock.Lock()
	defer glh.lock.Unlock()

	return glh.currentGasLimit
}

// Apply returns the larger of the estimated gas and the current floor, capped by max.
func (glh *GasLimitHolder) Apply(estimatedGas uint64) uint64 {
	return min(max(estimatedGas, glh.GetGasLimit()), max(glh.maxGasLimit, estimatedGas))
}
