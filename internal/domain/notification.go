package domain

import "time"

type NotificationType string

const (
	NotificationLike            NotificationType = "like"
	NotificationComment         NotificationType = "comment"
	NotificationConnection      NotificationType = "connection"
	NotificationJob             NotificationType = "job"
	NotificationMessage         NotificationType = "message"
	NotificationMention         NotificationType = "mention"
	NotificationBirthday        NotificationType = "birthday"
	NotificationWorkAnniversary NotificationType = "work_anniversary"
)

// Notification is addressed to UserID. The From* fields are a snapshot of
// the actor at the time the notification was generated.
type Notification struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	Type          NotificationType `json:"type"`
	FromUserID    string           `json:"fromUserId"`
	FromUserName  string           `json:"fromUserName"`
	FromUserImage string           `json:"fromUserImage"`
	Content       string           `json:"content"`
	Timestamp     time.Time        `json:"timestamp"`
	Read          bool             `json:"read"`
}

// NotificationFilter selects a tab of the notifications view.
type NotificationFilter string

const (
	FilterAll      NotificationFilter = "all"
	FilterJobs     NotificationFilter = "jobs"
	FilterPosts    NotificationFilter = "posts"
	FilterMentions NotificationFilter = "mentions"
)

// Matches reports whether n belongs to the filter's tab.
func (f NotificationFilter) Matches(n Notification) bool {
	switch f {
	case FilterJobs:
		return n.Type == NotificationJob
	case FilterPosts:
		return n.Type == NotificationLike || n.Type == NotificationComment
	case FilterMentions:
		return n.Type == NotificationMention
	default:
		return true
	}
}
