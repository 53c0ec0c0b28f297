package field

import "math"

const diagonal = float32(math.Sqrt2)

// signedShoreDistance computes a chamfer distance from every texel to the
// nearest water/land boundary. Values are negative over water and positive
// over land, in world units. Returns false when the slice is all water or all
// land, in which case the distance is undefined.
func signedShoreDistance(waterDepth []float32, res int, texel float32, out []float32) bool {
	var water, land int
	for _, d := range waterDepth {
		if d > 0 {
			water++
		} else {
			land++
		}
	}
	if water == 0 || land == 0 {
		return false
	}

	inf := float32(math.Inf(1))
	for i := range out {
		out[i] = inf
	}

	// Seed texels that touch a texel of the other kind
	wet := func(i int) bool { return waterDepth[i] > 0 }
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			i := z*res + x
			w := wet(i)
			if (x > 0 && wet(i-1) != w) || (x < res-1 && wet(i+1) != w) ||
				(z > 0 && wet(i-res) != w) || (z < res-1 && wet(i+res) != w) {
				out[i] = 0.5
			}
		}
	}

	relax := func(i, j int, cost float32) {
		if out[j]+cost < out[i] {
			out[i] = out[j] + cost
		}
	}

	// Forward pass
	for z := 0; z < res; z++ {
		for x := 0; x < res; x++ {
			i := z*res + x
			if x > 0 {
				relax(i, i-1, 1)
			}
			if z > 0 {
				relax(i, i-res, 1)
				if x > 0 {
					relax(i, i-res-1, diagonal)
				}
				if x < res-1 {
					relax(i, i-res+1, diagonal)
				}
			}
		}
	}

	// Backward pass
	for z := res - 1; z >= 0; z-- {
		for x := res - 1; x >= 0; x-- {
			i := z*res + x
			if x < res-1 {
				relax(i, i+1, 1)
			}
			if z < res-1 {
				relax(i, i+res, 1)
				if x < res-1 {
					relax(i, i+res+1, diagonal)
				}
				if x > 0 {
					relax(i, i+res-1, diagonal)
				}
			}
		}
	}

	for i := range out {
		out[i] *= texel
		if wet(i) {
			out[i] = -out[i]
		}
	}
	return true
}
