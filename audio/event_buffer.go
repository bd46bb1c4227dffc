package audio

import (
	"runtime"
	"sync/atomic"
)

// message is a raw channel message waiting to be handled on the audio thread.
// offset is the sample position within the next buffer.
type message struct {
	offset int
	data   [3]byte
	n      uint8 // bytes used in data
}

func (m message) bytes() []byte {
	return m.data[:m.n]
}

// eventBuffer is a lock-free spsc queue.
type eventBuffer struct {
	events      []message
	read, write *uint32
}

func newEventBuffer(size int) *eventBuffer {
	if size <= 0 || size&(size-1) != 0 {
		panic("event buffer size must be a power of 2")
	}
	return &eventBuffer{
		events: make([]message, size),
		read:   new(uint32),
		write:  new(uint32),
	}
}

func (b *eventBuffer) push(ev message) {
	for !b.tryPush(ev) {
		runtime.Gosched()
	}
}

// tryPush queues ev unless the buffer is full.
func (b *eventBuffer) tryPush(ev message) bool {
	write := atomic.LoadUint32(b.write)
	if write-atomic.LoadUint32(b.read) == uint32(len(b.events)) {
		return false
	}
	b.events[write%uint32(len(b.events))] = ev
	atomic.StoreUint32(b.write, write+1)
	return true
}

// iter calls f for every queued message with an offset below untilOffset,
// or for all of them if untilOffset is -1.
func (b *eventBuffer) iter(untilOffset int, f func(message)) {
	read := atomic.LoadUint32(b.read)
	write := atomic.LoadUint32(b.write)
	if read == write {
		return
	}
	for read != write {
		ev := b.events[read%uint32(len(b.events))]
		if ev.offset >= untilOffset && untilOffset != -1 {
			break
		}
		f(ev)
		read++
	}
	atomic.StoreUint32(b.read, read)
}
