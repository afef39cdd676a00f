package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/msomdec/proconnect/internal/domain"
)

// Posts returns the feed, most recent first.
func (s *SocialService) Posts() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts, func(domain.Post) bool { return true })
}

// Post returns the post with the given id.
func (s *SocialService) Post(id string) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.postLocked(id); p != nil {
		return p.Clone(), nil
	}
	return domain.Post{}, fmt.Errorf("%w: post %s", domain.ErrNotFound, id)
}

// PostsByUser returns the posts authored by userID.
func (s *SocialService) PostsByUser(userID string) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts, func(p domain.Post) bool { return p.UserID == userID })
}

func clonePosts(posts []domain.Post, keep func(domain.Post) bool) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// HasVoted reports whether userID has voted in the post's poll.
func (s *SocialService) HasVoted(postID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.postLocked(postID)
	return p != nil && p.Poll != nil && slices.Contains(p.Poll.Voters, userID)
}

// Jobs returns every listing in board order.
func (s *SocialService) Jobs() []domain.Job {
	return s.filterJobs(func(domain.Job) bool { return true })
}

// Job returns the listing with the given id.
func (s *SocialService) Job(id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := slices.IndexFunc(s.jobs, func(j domain.Job) bool { return j.ID == id }); i >= 0 {
		return s.jobs[i].Clone(), nil
	}
	return domain.Job{}, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
}

// SearchJobs matches query against title, company and location,
// case-insensitively. An empty query matches every listing.
func (s *SocialService) SearchJobs(query string) []domain.Job {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.filterJobs(func(j domain.Job) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(j.Title), q) ||
			strings.Contains(strings.ToLower(j.Company), q) ||
			strings.Contains(strings.ToLower(j.Location), q)
	})
}

// AppliedJobs returns the listings userID has applied to.
func (s *SocialService) AppliedJobs(userID string) []domain.Job {
	return s.filterJobs(func(j domain.Job) bool { return j.HasApplicant(userID) })
}

func (s *SocialService) filterJobs(keep func(domain.Job) bool) []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j.Clone())
		}
	}
	return out
}

// Notifications returns the notifications addressed to userID that match
// filter, most recent first.
func (s *SocialService) Notifications(userID string, filter domain.NotificationFilter) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && filter.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount counts the unread notifications addressed to userID.
func (s *SocialService) UnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, x := range s.notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n
}

// Conversation returns the messages exchanged between a and b in the
// order they were sent.
func (s *SocialService) Conversation(a, b string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.Involves(a, b) {
			out = append(out, m)
		}
	}
	return out
}

// Conversations summarises every exchange involving userID, most recently
// active first.
func (s *SocialService) Conversations(userID string) []domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPartner := make(map[string]*domain.Conversation)
	var order []string
	for _, m := range s.messages {
		var partner string
		switch userID {
		case m.SenderID:
			partner = m.ReceiverID
		case m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		c, ok := byPartner[partner]
		if !ok {
			c = &domain.Conversation{PartnerID: partner}
			byPartner[partner] = c
			order = append(order, partner)
		}
		c.Last = m
		c.Count++
	}

	out := make([]domain.Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byPartner[id])
	}
	slices.SortStableFunc(out, func(a, b domain.Conversation) int {
		return cmp.Compare(b.Last.Timestamp.UnixNano(), a.Last.Timestamp.UnixNano())
	})
	return out
}
