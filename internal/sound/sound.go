// Package sound publishes audio cue events for the presentation layer.
// The synthesizer itself lives outside the core; cues are fire-and-forget
// and a broken subscriber can never fail a sale.
package sound

import (
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/talkincode/fairpos/internal/domain"
)

const Topic = "fairpos.sound"

type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Play emits a cue. Subscriber panics are swallowed.
func (b *Bus) Play(event domain.SoundEvent) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("sound subscriber panic", zap.Any("cause", r))
		}
	}()
	b.bus.Publish(Topic, event)
}

// Subscribe registers a cue listener.
func (b *Bus) Subscribe(fn func(domain.SoundEvent)) error {
	return b.bus.Subscribe(Topic, fn)
}

// Unsubscribe removes a previously registered listener.
func (b *Bus) Unsubscribe(fn func(domain.SoundEvent)) error {
	return b.bus.Unsubscribe(Topic, fn)
}
