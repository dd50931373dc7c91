/*
   Real-time pacing: sleeps in batches so Run() tracks the configured
   clock frequency instead of racing ahead at host speed.

   Copyright (c) 2024, Richard Cornwell
   See cpudefs.go for license text.
*/

package cpu

import "time"

// pacingBatch is the cycle threshold spec.md §4.7 describes: Run
// accumulates cycles and only measures/sleeps once this many have
// elapsed, rather than after every single instruction.
const pacingBatch = 20000

// pacer tracks the wall-clock baseline and the cycle count it was
// taken at, so throttle can compute how far Run has gotten ahead of
// real time without touching the state from more than one goroutine.
type pacer struct {
	started     bool
	baseWall    time.Time
	baseCycles  uint64
}

// throttle is called after every instruction. Once at least
// pacingBatch cycles have accumulated since the last check, it compares
// elapsed wall-clock time against the simulated time those cycles
// should have taken and sleeps off the difference. Overshoot (the batch
// took longer than its simulated time) is absorbed here and only here: there is no retroactive
// correction against instructions already executed.
func (p *pacer) throttle(totalCycles uint64, clockHz uint64) {
	if clockHz == 0 {
		return
	}
	if !p.started {
		p.started = true
		p.baseWall = time.Now()
		p.baseCycles = totalCycles
		return
	}

	elapsed := totalCycles - p.baseCycles
	if elapsed < pacingBatch {
		return
	}

	wantDur := time.Duration(float64(elapsed) / float64(clockHz) * float64(time.Second))
	actualDur := time.Since(p.baseWall)
	if wantDur > actualDur {
		time.Sleep(wantDur - actualDur)
	}

	p.baseWall = time.Now()
	p.baseCycles = totalCycles
}
