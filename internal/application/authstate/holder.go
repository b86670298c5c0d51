package authstate

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/learnhub-api/internal/domain"
)

// Фазы жизненного цикла холдера
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
)

// SessionState — кешированное состояние живой сессии пользователя.
type SessionState struct {
	UserID      uuid.UUID
	AccessToken string
	Profile     *domain.Profile // nil, если профиль не удалось подтянуть
	SignedInAt  time.Time
	RefreshedAt time.Time
}

type ProfileLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

// Holder — единственный потребитель подписки на события авторизации.
// Держит реестр активных сессий: SIGNED_IN кеширует профиль, SIGNED_OUT
// синхронно чистит состояние, TOKEN_REFRESHED обновляет только токен.
type Holder struct {
	profiles ProfileLoader

	mu       sync.RWMutex
	phase    Phase
	sessions map[uuid.UUID]*SessionState

	sub  *Subscription
	done chan struct{}
}

func NewHolder(profiles ProfileLoader) *Holder {
	return &Holder{
		profiles: profiles,
		phase:    PhaseUninitialized,
		sessions: make(map[uuid.UUID]*SessionState),
	}
}

// Start подписывается на брокер и запускает цикл обработки.
// Повторный Start — no-op.
func (h *Holder) Start(broker *Broker) {
	h.mu.Lock()
	if h.phase != PhaseUninitialized {
		h.mu.Unlock()
		return
	}
	h.phase = PhaseLoading
	h.sub = broker.Subscribe()
	h.done = make(chan struct{})
	h.mu.Unlock()

	go h.loop()

	h.mu.Lock()
	h.phase = PhaseReady
	h.mu.Unlock()
}

func (h *Holder) loop() {
	defer close(h.done)
	for e := range h.sub.C {
		h.apply(e)
	}
}

func (h *Holder) apply(e Event) {
	switch e.Type {
	case SignedIn:
		// Профиль тянем до захвата мьютекса, сеть под локом не держим
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		profile, err := h.profiles.GetByID(ctx, e.UserID)
		cancel()
		if err != nil {
			log.Printf("authstate: failed to load profile %s: %v", e.UserID, err)
			profile = nil
		}

		h.mu.Lock()
		h.sessions[e.UserID] = &SessionState{
			UserID:      e.UserID,
			AccessToken: e.AccessToken,
			Profile:     profile,
			SignedInAt:  e.At,
			RefreshedAt: e.At,
		}
		h.mu.Unlock()

	case SignedOut:
		h.mu.Lock()
		delete(h.sessions, e.UserID)
		h.mu.Unlock()

	case TokenRefreshed:
		h.mu.Lock()
		if s, ok := h.sessions[e.UserID]; ok {
			// Профиль не трогаем — рефреш токена его не меняет
			s.AccessToken = e.AccessToken
			s.RefreshedAt = e.At
		}
		h.mu.Unlock()
	}
}

// Stop отписывается и дожидается остановки цикла.
func (h *Holder) Stop() {
	h.mu.Lock()
	sub := h.sub
	done := h.done
	h.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Unsubscribe()
	<-done

	h.mu.Lock()
	h.phase = PhaseUninitialized
	h.sub = nil
	h.sessions = make(map[uuid.UUID]*SessionState)
	h.mu.Unlock()
}

func (h *Holder) Phase() Phase {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.phase
}

// Get возвращает копию состояния сессии. ok == false — пользователь анонимен.
func (h *Holder) Get(userID uuid.UUID) (SessionState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[userID]
	if !ok {
		return SessionState{}, false
	}
	return *s, true
}

func (h *Holder) Authenticated(userID uuid.UUID) bool {
	_, ok := h.Get(userID)
	return ok
}

func (h *Holder) ActiveCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
