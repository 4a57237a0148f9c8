// Package detect classifies anomalies in an evolving body set.
//
// The detectors are stateless functions of an [engine.View]:
//
//   - [Collision] scans every unordered pair for interpenetration
//   - [Escape] looks for a body moving faster than the local escape speed
//     of everything else
//
// Escape verdicts are noisy near fast periapsis passages, so callers feed
// them through a [Debouncer], which only confirms an escape after the
// verdict persists across frames.
//
// # Known approximation
//
// In [ModeCore] the radius of each body is its physical radius scaled by
// a fixed fudge factor. The factor is a blanket margin against bodies
// stepping through each other between frames; it is not derived from the
// actual per-step displacement, so at large time scales it can both miss
// and over-report contacts.
package detect
