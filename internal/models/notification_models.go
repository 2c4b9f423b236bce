package models

// AppNotification is one entry of the notifications feed. OrderCode references
// the order by business key, not by identity.
type AppNotification struct {
	ID        string `json:"id"`
	OrderCode string `json:"orderCode"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	IsRead    bool   `json:"isRead"`
	Timestamp int64  `json:"timestamp"`
}
