package authstate

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий авторизации
type EventType string

const (
	SignedIn       EventType = "SIGNED_IN"
	SignedOut      EventType = "SIGNED_OUT"
	TokenRefreshed EventType = "TOKEN_REFRESHED"
)

type Event struct {
	Type        EventType
	UserID      uuid.UUID
	AccessToken string
	At          time.Time
}

// Subscription — отменяемая подписка на поток событий.
// После Unsubscribe канал C закрывается, повторный вызов безопасен.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Broker раздает события авторизации подписчикам.
// Публикация не блокируется: переполненный подписчик теряет событие.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Event)}
}

func (b *Broker) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 64)
	if b.closed {
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}
	b.subs[id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		},
	}
}

func (b *Broker) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			log.Printf("authstate: subscriber %d is full, dropping %s", id, e.Type)
		}
	}
}

// Close закрывает все подписки. Вызывается при остановке сервиса.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
