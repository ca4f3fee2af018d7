package models

// Inbound event names pushed by the backend over the realtime connection.
const (
	EventOrderNew           = "order:new"
	EventOrderUpdated       = "order:updated"
	EventOrderStatusChanged = "order:status_changed"
	EventInventoryLowStock  = "inventory:low_stock"
	EventStaffClockIn       = "staff:clock_in"
	EventStaffClockOut      = "staff:clock_out"
	EventTaskAssigned       = "task:assigned"
	EventTaskCompleted      = "task:completed"
	EventVoiceCommand       = "voice:command_received"
	EventNotificationNew    = "notifications.new"
	EventUnreadCountUpdated = "notifications.unread_count.updated"
	EventSystemAlert        = "system:alert"
	EventSystemNotification = "system:notification"
)

// Outbound event names the client emits to scope its subscription.
const (
	EventJoinUser        = "join:user"
	EventLeaveUser       = "leave:user"
	EventJoinRestaurant  = "join:restaurant"
	EventLeaveRestaurant = "leave:restaurant"
)

// InboundEvents lists every backend event that should be normalized into a
// notification, mapped to its notification type.
var InboundEvents = map[string]NotificationType{
	EventOrderNew:           TypeOrder,
	EventOrderUpdated:       TypeOrder,
	EventOrderStatusChanged: TypeOrder,
	EventInventoryLowStock:  TypeInventory,
	EventStaffClockIn:       TypeStaff,
	EventStaffClockOut:      TypeStaff,
	EventTaskAssigned:       TypeTask,
	EventTaskCompleted:      TypeTask,
	EventVoiceCommand:       TypeVoice,
	EventSystemAlert:        TypeSystem,
	EventSystemNotification: TypeSystem,
	EventNotificationNew:    TypeSystem,
}

// JoinUser is the payload for join:user / leave:user emits.
type JoinUser struct {
	UserID       string `json:"userId"`
	RestaurantID string `json:"restaurantId,omitempty"`
}

// JoinRestaurant is the payload for join:restaurant / leave:restaurant emits.
type JoinRestaurant struct {
	RestaurantID string `json:"restaurantId"`
}

// UnreadCount is the payload of notifications.unread_count.updated.
type UnreadCount struct {
	Count int `json:"count"`
}
