package domain

import "time"

// Message is a direct message between two users. Nothing in the store
// flips Read to true.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Involves reports whether the message was exchanged between a and b.
func (m Message) Involves(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Conversation summarises the exchange between a user and one partner.
type Conversation struct {
	PartnerID string
	Last      Message
	Count     int
}
