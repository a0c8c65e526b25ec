package layers

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// glorotUniform fills w with Glorot-uniform samples drawn from an
// explicitly seeded source, so identical seeds give identical weights
// and no process-global generator is touched.
func glorotUniform(w []float64, fanIn, fanOut int, seed int64) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	u := distuv.Uniform{
		Min: -limit,
		Max: limit,
		Src: rand.NewSource(uint64(seed)),
	}
	for i := range w {
		w[i] = u.Rand()
	}
}
