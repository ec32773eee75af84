package service

import (
	"sync"
	"time"
)

// Change topics, one per persisted collection plus the order log.
const (
	TopicUsers    = "users"
	TopicProducts = "products"
	TopicSession  = "session"
	TopicCart     = "cart"
	TopicOrders   = "orders"
)

// Change tells subscribers which collection was written.
type Change struct {
	Topic string    `json:"topic"`
	At    time.Time `json:"at"`
}

const subscriberBuffer = 16

// Notifier fans out change notifications. A subscriber that falls behind
// misses notifications rather than stalling the writer.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

func (n *Notifier) Subscribe() (<-chan Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Change, subscriberBuffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}

func (n *Notifier) Publish(topics ...string) {
	now := time.Now().UTC()
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, topic := range topics {
		for _, ch := range n.subs {
			select {
			case ch <- Change{Topic: topic, At: now}:
			default:
			}
		}
	}
}
