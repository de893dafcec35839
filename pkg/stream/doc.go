// Package stream implements the delivery contract between a run's
// producer and its consumer.
//
// The primitive is Subscription: a single ordered channel of events plus
// exactly one terminal signal. Callback-style consumption (Subscriber) is
// a thin adapter pumping the channel, so terminal and cancellation
// semantics live in one place.
//
// Cancellation is cooperative on the producer (Emit returns ErrCancelled
// once the consumer cancels, and a few in-flight events may still arrive
// and be discarded) and authoritative on the consumer (no deliveries
// happen after Cancel is observed by the delivery loop).
package stream
