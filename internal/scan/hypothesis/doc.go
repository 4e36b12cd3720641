// Package hypothesis owns the accepted-hypothesis set for a scanning
// session.
//
// Responsibilities: the Hypothesis output entity, temporal rate
// limiting (cooldown), spatial deduplication, the capacity full-reset
// policy, change notification, and snapshot reads for renderers.
// Offer is the sole write path and is linearized under one mutex.
package hypothesis
