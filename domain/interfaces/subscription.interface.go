package interfaces

// Subscription is a handle to a stream of values for one named topic.
// The receiver owns the handle and must call Unsubscribe on teardown;
// a forgotten handle keeps delivering into a stream nobody drains.
type Subscription[T any] struct {
	Stream      <-chan T
	Unsubscribe func()
	Topic       string
}
