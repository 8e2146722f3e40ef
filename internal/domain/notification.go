package domain

// Notification is the platform-neutral payload posted for one entry
type Notification struct {
	Title       string
	URL         string
	Description string
	Author      NotificationAuthor
	Timestamp   string
	Color       int
	Footer      *NotificationFooter
	ImageURL    string
}

// NotificationAuthor attributes the notification to its source feed
type NotificationAuthor struct {
	Name    string
	URL     string
	IconURL string
}

// NotificationFooter carries the entry author when known
type NotificationFooter struct {
	Text string
}
