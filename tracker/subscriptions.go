package tracker

import (
	"github.com/anisan-cli/playtrack/media"
	"github.com/samber/lo"
)

// subscriptions keeps one handler registration per event kind on a player.
type subscriptions struct {
	player      Player
	unsubscribe map[media.EventKind]func()
}

func newSubscriptions(p Player) *subscriptions {
	return &subscriptions{
		player:      p,
		unsubscribe: make(map[media.EventKind]func()),
	}
}

func (s *subscriptions) subscribe(kind media.EventKind, h media.Handler) {
	s.unsubscribeFrom(kind)
	s.unsubscribe[kind] = s.player.Subscribe(kind, h)
}

func (s *subscriptions) unsubscribeFrom(kind media.EventKind) {
	if off, ok := s.unsubscribe[kind]; ok {
		off()
		delete(s.unsubscribe, kind)
	}
}

func (s *subscriptions) clear() {
	for _, kind := range lo.Keys(s.unsubscribe) {
		s.unsubscribeFrom(kind)
	}
}

func (s *subscriptions) len() int {
	return len(s.unsubscribe)
}
