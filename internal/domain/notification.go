package domain

// Notification is the fire-and-forget payload handed to the external
// notification dispatcher after reviews, attendance confirmations and
// complaint resolutions.
type Notification struct {
	ToUserID uint   `json:"to_user_id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}
