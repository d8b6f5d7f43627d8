package notifications

// Page is one page of a user's notifications, newest first.
type Page struct {
	Items       []Notification `json:"items"`
	NextCursor  *int64         `json:"cursor"`
	HasMore     bool           `json:"has_more"`
	UnreadCount int            `json:"unread_count"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func clampPageSize(size, def, limit int) int {
	if size <= 0 {
		size = def
	}
	return max(min(size, limit), 1)
}
