package services

// Event names pushed to connected clients. Payloads are the entity as stored,
// resolved for display where the consuming UI needs it.
const (
	EventNewOrder             = "newOrder"
	EventOrderStatusChanged   = "orderStatusChanged"
	EventPaymentStatusChanged = "paymentStatusChanged"
	EventSessionCheckout      = "sessionCheckout"
)

// Notifier is the broadcast capability handed to each lifecycle service.
// Broadcast reaches every connected client; BroadcastTo reaches one room.
type Notifier interface {
	Broadcast(event string, payload interface{})
	BroadcastTo(room string, event string, payload interface{})
}

func BranchRoom(id string) string  { return "branch-" + id }
func SessionRoom(id string) string { return "session-" + id }
func OrderRoom(id string) string   { return "order-" + id }

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Broadcast(event string, payload interface{})                 {}
func (NopNotifier) BroadcastTo(room string, event string, payload interface{}) {}
