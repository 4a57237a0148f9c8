// Package analysis provides chaos diagnostics for a body set.
//
// [LyapunovExponent] estimates the largest Lyapunov exponent by following
// a reference trajectory and a copy displaced by a tiny offset, rescaling
// the offset whenever it grows past a threshold:
//
//	div, err := analysis.LyapunovExponent(ic, integrators.NewRK4(), analysis.DefaultOptions())
//	if div.Exponent > 0 {
//	    // nearby configurations separate exponentially
//	}
//
// The exponent is in 1/day; its inverse is the Lyapunov time.
package analysis
