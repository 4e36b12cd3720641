// Package classify owns the furniture classification layer.
//
// Responsibilities: the closed furniture label set, size gating of
// coarse scan noise, ordered dimension-range rules, and confidence
// scoring. Stateless; session policy lives in the hypothesis package.
package classify
