package frame

// DoubleBuffer is a single-threaded front/back swap: the state step
// builds the next frame's entity list into Back while Front still holds
// the list last blitted into a PartitionedTriBuffer section, then swaps
// once the blit is done. Unlike mirror.Cell, this has no cross-thread
// safety of its own — it is meant to be used entirely from the logic
// thread, as scratch space between simulation and upload.
//
// Grounded on original_source/src/state/buffer.rs's DoubleBuffer/
// SwapBuffers, generalized from Vec<T> to any slice-backed T.
type DoubleBuffer[T any] struct {
	current T
	next    T
}

// NewDoubleBuffer returns a buffer whose Current and Next are both
// initialised by calling factory.
func NewDoubleBuffer[T any](factory func() T) *DoubleBuffer[T] {
	return &DoubleBuffer[T]{current: factory(), next: factory()}
}

// Current returns the front buffer: the ready version.
func (b *DoubleBuffer[T]) Current() *T {
	return &b.current
}

// Next returns the back buffer: the work-in-progress version.
func (b *DoubleBuffer[T]) Next() *T {
	return &b.next
}

// Swap exchanges front and back.
func (b *DoubleBuffer[T]) Swap() {
	b.current, b.next = b.next, b.current
}
