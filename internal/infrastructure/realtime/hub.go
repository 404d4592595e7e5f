package realtime

import (
	"sync"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan *entities.Notification
}

// Hub distribui notificações para as conexões abertas de cada usuário
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	logger      ports.Logger
}

func NewHub(logger ports.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registra uma conexão do usuário. cancel fecha o canal e pode ser chamado mais de uma vez.
func (h *Hub) Subscribe(userID string) (<-chan *entities.Notification, func()) {
	sub := &subscriber{ch: make(chan *entities.Notification, subscriberBuffer)}

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[*subscriber]struct{})
	}
	h.subscribers[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subscribers[userID], sub)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
			close(sub.ch)
		})
	}

	return sub.ch, cancel
}

// Publish nunca bloqueia: assinante com buffer cheio perde a notificação
func (h *Hub) Publish(notification *entities.Notification) {
	if notification == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range notification.UserIDs {
		for sub := range h.subscribers[userID] {
			select {
			case sub.ch <- notification:
			default:
				h.logger.Warn("Dropping notification for slow subscriber",
					"user_id", userID,
					"notification_id", notification.ID,
				)
			}
		}
	}
}

// Subscribers retorna quantas conexões o usuário tem abertas
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

var _ ports.NotificationPublisher = (*Hub)(nil)
