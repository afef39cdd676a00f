package domain

import (
	"slices"
	"time"
)

type PostType string

const (
	PostTypeText        PostType = "text"
	PostTypeImage       PostType = "image"
	PostTypeVideo       PostType = "video"
	PostTypeArticle     PostType = "article"
	PostTypePoll        PostType = "poll"
	PostTypeCelebration PostType = "celebration"
)

// Valid reports whether t is one of the known post kinds.
func (t PostType) Valid() bool {
	switch t {
	case PostTypeText, PostTypeImage, PostTypeVideo, PostTypeArticle, PostTypePoll, PostTypeCelebration:
		return true
	}
	return false
}

// Post is a feed entry. The author fields are a snapshot taken at creation
// time and are not updated when the author edits their profile.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserTitle string    `json:"userTitle"`
	UserImage string    `json:"userImage"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	Timestamp time.Time `json:"timestamp"`
	Type      PostType  `json:"type"`
	Poll      *Poll     `json:"poll,omitempty"`
	Article   *Article  `json:"article,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserImage string    `json:"userImage"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Poll is embedded in a post. TotalVotes always equals the sum of the
// option votes.
type Poll struct {
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"totalVotes"`
	Voters     []string     `json:"voters,omitempty"`
}

type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Article struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	ReadTime string `json:"readTime"`
}

// LikedBy reports whether userID is in the post's like set.
func (p Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// Clone returns a deep copy of the post.
func (p Post) Clone() Post {
	p.Likes = slices.Clone(p.Likes)
	p.Comments = slices.Clone(p.Comments)
	if p.Poll != nil {
		poll := *p.Poll
		poll.Options = slices.Clone(poll.Options)
		poll.Voters = slices.Clone(poll.Voters)
		p.Poll = &poll
	}
	if p.Article != nil {
		article := *p.Article
		p.Article = &article
	}
	return p
}
