package systems

// lerp blends a toward b by t. t outside [0,1] extrapolates.
func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
