package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/event"
)

// PostInput is the content of a new post. Type defaults to text.
type PostInput struct {
	Content string
	Image   string
	Type    domain.PostType
	Poll    *PollInput
	Article *domain.Article
}

type PollInput struct {
	Question string   `validate:"required"`
	Options  []string `validate:"min=2,dive,required"`
}

// SocialOptions configures a SocialService.
type SocialOptions struct {
	Now func() time.Time
}

// SocialService owns posts, jobs, messages and notifications. Directory
// writes are delegated to the SessionService.
type SocialService struct {
	mu            sync.RWMutex
	posts         []domain.Post
	jobs          []domain.Job
	messages      []domain.Message
	notifications []domain.Notification

	storage  *Storage
	sessions *SessionService
	events   *event.Bus
	metrics  *Metrics
	now      func() time.Time
}

// NewSocialService restores the persisted collections. Collections with
// nothing persisted are filled from seed.
func NewSocialService(ctx context.Context, storage *Storage, sessions *SessionService, seed Seed, events *event.Bus, metrics *Metrics, opts SocialOptions) *SocialService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &SocialService{
		storage:  storage,
		sessions: sessions,
		events:   events,
		metrics:  metrics,
		now:      opts.Now,
	}
	seed = seed.clone()
	s.posts = restore(ctx, storage, domain.KeyPosts, seed.Posts)
	s.jobs = restore(ctx, storage, domain.KeyJobs, seed.Jobs)
	s.messages = restore(ctx, storage, domain.KeyMessages, seed.Messages)
	s.notifications = restore(ctx, storage, domain.KeyNotifications, seed.Notifications)
	return s
}

func restore[T any](ctx context.Context, storage *Storage, key string, fallback []T) []T {
	var v []T
	ok, err := storage.load(ctx, key, &v)
	if err != nil {
		slog.Warn("persisted collection unreadable, using seed", "key", key, "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}
	return v
}

// Reseed replaces posts, jobs and notifications with seed and persists the
// result. Direct messages are kept; seed.Messages only applies at startup.
func (s *SocialService) Reseed(ctx context.Context, seed Seed) {
	seed = seed.clone()
	s.mu.Lock()
	s.posts = seed.Posts
	s.jobs = seed.Jobs
	s.notifications = seed.Notifications
	s.storage.save(ctx, domain.KeyPosts, s.posts)
	s.storage.save(ctx, domain.KeyJobs, s.jobs)
	s.storage.save(ctx, domain.KeyNotifications, s.notifications)
	s.mu.Unlock()

	slog.Debug("social data reseeded", "posts", len(seed.Posts), "jobs", len(seed.Jobs))
	for _, t := range []event.Type{event.PostsChanged, event.JobsChanged, event.NotificationsChanged} {
		s.events.Publish(event.Event{Type: t})
	}
}

// CreatePost prepends a post by the active user. Content is stored as given.
func (s *SocialService) CreatePost(ctx context.Context, in PostInput) (domain.Post, error) {
	post, err := s.createPost(ctx, in)
	s.metrics.observe("social", "create_post", err)
	if err != nil {
		return domain.Post{}, err
	}
	s.events.Publish(event.Event{Type: event.PostsChanged, UserID: post.UserID})
	return post, nil
}

func (s *SocialService) createPost(ctx context.Context, in PostInput) (domain.Post, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return domain.Post{}, err
	}

	in.Type = cmp.Or(in.Type, domain.PostTypeText)
	if !in.Type.Valid() {
		return domain.Post{}, fmt.Errorf("%w: unknown post type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Type == domain.PostTypePoll && in.Poll == nil {
		return domain.Post{}, fmt.Errorf("%w: poll post without a poll", domain.ErrInvalidInput)
	}
	if in.Type == domain.PostTypeArticle && in.Article == nil {
		return domain.Post{}, fmt.Errorf("%w: article post without an article", domain.ErrInvalidInput)
	}
	if in.Poll != nil && in.Type != domain.PostTypePoll {
		return domain.Post{}, fmt.Errorf("%w: poll attached to a %s post", domain.ErrInvalidInput, in.Type)
	}
	if in.Article != nil && in.Type != domain.PostTypeArticle {
		return domain.Post{}, fmt.Errorf("%w: article attached to a %s post", domain.ErrInvalidInput, in.Type)
	}

	post := domain.Post{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		UserTitle: actor.Title,
		UserImage: actor.ProfileImage,
		Content:   in.Content,
		Image:     in.Image,
		Likes:     []string{},
		Comments:  []domain.Comment{},
		Timestamp: s.now(),
		Type:      in.Type,
	}
	if in.Poll != nil {
		poll, err := newPoll(*in.Poll)
		if err != nil {
			return domain.Post{}, err
		}
		post.Poll = poll
	}
	if in.Article != nil {
		article := *in.Article
		post.Article = &article
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = slices.Insert(s.posts, 0, post)
	s.storage.save(ctx, domain.KeyPosts, s.posts)
	return post.Clone(), nil
}

func newPoll(in PollInput) (*domain.Poll, error) {
	in.Question = strings.TrimSpace(in.Question)
	options := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	in.Options = options
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: a poll needs a question and at least two options", domain.ErrInvalidInput)
	}
	poll := &domain.Poll{Question: in.Question, Voters: []string{}}
	for _, o := range options {
		poll.Options = append(poll.Options, domain.PollOption{Text: o})
	}
	return poll, nil
}

// LikePost toggles the active user's like. It reports whether the post is
// liked after the call. The author is notified only of a new like by
// someone else.
func (s *SocialService) LikePost(ctx context.Context, postID string) (bool, error) {
	liked, notified, err := s.likePost(ctx, postID)
	s.metrics.observe("social", "like_post", err)
	if err != nil {
		return false, err
	}
	s.events.Publish(event.Event{Type: event.PostsChanged})
	if notified != "" {
		s.events.Publish(event.Event{Type: event.NotificationsChanged, UserID: notified})
	}
	return liked, nil
}

func (s *SocialService) likePost(ctx context.Context, postID string) (bool, string, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return false, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.postLocked(postID)
	if p == nil {
		return false, "", fmt.Errorf("%w: post %s", domain.ErrNotFound, postID)
	}
	if p.LikedBy(actor.ID) {
		p.Likes = slices.DeleteFunc(p.Likes, func(id string) bool { return id == actor.ID })
		s.storage.save(ctx, domain.KeyPosts, s.posts)
		return false, "", nil
	}

	p.Likes = append(p.Likes, actor.ID)
	s.storage.save(ctx, domain.KeyPosts, s.posts)
	if p.UserID == actor.ID {
		return true, "", nil
	}
	s.notifyLocked(ctx, p.UserID, domain.NotificationLike, actor, "liked your post")
	return true, p.UserID, nil
}

// CommentPost appends a comment by the active user.
func (s *SocialService) CommentPost(ctx context.Context, postID, content string) (domain.Comment, error) {
	comment, notified, err := s.commentPost(ctx, postID, content)
	s.metrics.observe("social", "comment_post", err)
	if err != nil {
		return domain.Comment{}, err
	}
	s.events.Publish(event.Event{Type: event.PostsChanged})
	if notified != "" {
		s.events.Publish(event.Event{Type: event.NotificationsChanged, UserID: notified})
	}
	return comment, nil
}

func (s *SocialService) commentPost(ctx context.Context, postID, content string) (domain.Comment, string, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return domain.Comment{}, "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, "", fmt.Errorf("%w: comment cannot be empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.postLocked(postID)
	if p == nil {
		return domain.Comment{}, "", fmt.Errorf("%w: post %s", domain.ErrNotFound, postID)
	}
	comment := domain.Comment{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		UserImage: actor.ProfileImage,
		Content:   content,
		Timestamp: s.now(),
	}
	p.Comments = append(p.Comments, comment)
	s.storage.save(ctx, domain.KeyPosts, s.posts)

	if p.UserID == actor.ID {
		return comment, "", nil
	}
	s.notifyLocked(ctx, p.UserID, domain.NotificationComment, actor, fmt.Sprintf(`commented on your post: "%s"`, content))
	return comment, p.UserID, nil
}

// VotePoll records the active user's vote for the option at index. Each
// user votes at most once per poll.
func (s *SocialService) VotePoll(ctx context.Context, postID string, index int) (domain.Poll, error) {
	poll, err := s.votePoll(ctx, postID, index)
	s.metrics.observe("social", "vote_poll", err)
	if err != nil {
		return domain.Poll{}, err
	}
	s.events.Publish(event.Event{Type: event.PostsChanged})
	return poll, nil
}

func (s *SocialService) votePoll(ctx context.Context, postID string, index int) (domain.Poll, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return domain.Poll{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.postLocked(postID)
	if p == nil {
		return domain.Poll{}, fmt.Errorf("%w: post %s", domain.ErrNotFound, postID)
	}
	if p.Poll == nil {
		return domain.Poll{}, fmt.Errorf("%w: post %s has no poll", domain.ErrInvalidInput, postID)
	}
	if index < 0 || index >= len(p.Poll.Options) {
		return domain.Poll{}, fmt.Errorf("%w: option %d out of range", domain.ErrInvalidInput, index)
	}
	if slices.Contains(p.Poll.Voters, actor.ID) {
		return domain.Poll{}, domain.ErrAlreadyVoted
	}

	p.Poll.Options[index].Votes++
	p.Poll.TotalVotes++
	p.Poll.Voters = append(p.Poll.Voters, actor.ID)
	s.storage.save(ctx, domain.KeyPosts, s.posts)
	return *p.Clone().Poll, nil
}

// SendMessage appends an unread message from the active user to receiverID
// and notifies the receiver.
func (s *SocialService) SendMessage(ctx context.Context, receiverID, content string) (domain.Message, error) {
	msg, err := s.sendMessage(ctx, receiverID, content)
	s.metrics.observe("social", "send_message", err)
	if err != nil {
		return domain.Message{}, err
	}
	s.events.Publish(event.Event{Type: event.MessagesChanged, UserID: receiverID})
	s.events.Publish(event.Event{Type: event.NotificationsChanged, UserID: receiverID})
	return msg, nil
}

func (s *SocialService) sendMessage(ctx context.Context, receiverID, content string) (domain.Message, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return domain.Message{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, fmt.Errorf("%w: message cannot be empty", domain.ErrInvalidInput)
	}
	if receiverID == actor.ID {
		return domain.Message{}, fmt.Errorf("%w: cannot message yourself", domain.ErrInvalidInput)
	}
	if _, err := s.sessions.User(receiverID); err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   actor.ID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.storage.save(ctx, domain.KeyMessages, s.messages)
	s.notifyLocked(ctx, receiverID, domain.NotificationMessage, actor, fmt.Sprintf(`sent you a message: "%s"`, content))
	return msg, nil
}

// MarkNotificationRead marks one of the active user's notifications read.
// Marking an already read notification succeeds.
func (s *SocialService) MarkNotificationRead(ctx context.Context, id string) error {
	changed, err := s.markNotificationRead(ctx, id)
	s.metrics.observe("social", "mark_notification_read", err)
	if err != nil {
		return err
	}
	if changed != "" {
		s.events.Publish(event.Event{Type: event.NotificationsChanged, UserID: changed})
	}
	return nil
}

func (s *SocialService) markNotificationRead(ctx context.Context, id string) (string, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.notifications, func(n domain.Notification) bool {
		return n.ID == id && n.UserID == actor.ID
	})
	if i < 0 {
		return "", fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	if s.notifications[i].Read {
		return "", nil
	}
	s.notifications[i].Read = true
	s.storage.save(ctx, domain.KeyNotifications, s.notifications)
	return actor.ID, nil
}

// SendConnectionRequest records a request from the active user to targetID
// and notifies the target. A repeated request is accepted without a second
// notification.
func (s *SocialService) SendConnectionRequest(ctx context.Context, targetID string) error {
	actor, added, err := s.sessions.RecordConnectionRequest(ctx, targetID)
	if err == nil && added {
		s.mu.Lock()
		s.notifyLocked(ctx, targetID, domain.NotificationConnection, actor, "sent you a connection request")
		s.mu.Unlock()
		s.events.Publish(event.Event{Type: event.NotificationsChanged, UserID: targetID})
	}
	s.metrics.observe("social", "send_connection_request", err)
	return err
}

// AcceptConnectionRequest connects the active user with requesterID.
func (s *SocialService) AcceptConnectionRequest(ctx context.Context, requesterID string) error {
	_, err := s.sessions.AcceptConnection(ctx, requesterID)
	s.metrics.observe("social", "accept_connection_request", err)
	return err
}

// ApplyToJob adds the active user to the job's applicants. It reports
// whether this call added a new application; only then is a confirmation
// notification sent.
func (s *SocialService) ApplyToJob(ctx context.Context, jobID string) (bool, error) {
	applied, userID, err := s.applyToJob(ctx, jobID)
	s.metrics.observe("social", "apply_to_job", err)
	if err != nil {
		return false, err
	}
	if applied {
		s.events.Publish(event.Event{Type: event.JobsChanged, UserID: userID})
		s.events.Publish(event.Event{Type: event.NotificationsChanged, UserID: userID})
	}
	return applied, nil
}

func (s *SocialService) applyToJob(ctx context.Context, jobID string) (bool, string, error) {
	actor, err := s.sessions.Current()
	if err != nil {
		return false, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.jobs, func(j domain.Job) bool { return j.ID == jobID })
	if i < 0 {
		return false, "", fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	job := &s.jobs[i]
	if job.HasApplicant(actor.ID) {
		return false, actor.ID, nil
	}
	job.Applicants = append(job.Applicants, actor.ID)
	s.storage.save(ctx, domain.KeyJobs, s.jobs)

	system := domain.User{ID: SystemUserID, Name: SystemUserName, ProfileImage: systemUserImage}
	s.notifyLocked(ctx, actor.ID, domain.NotificationJob, system, "Your application has been submitted successfully")
	return true, actor.ID, nil
}

// notifyLocked prepends a notification for recipientID from the given
// actor and persists the collection.
func (s *SocialService) notifyLocked(ctx context.Context, recipientID string, t domain.NotificationType, from domain.User, content string) {
	n := domain.Notification{
		ID:            uuid.NewString(),
		UserID:        recipientID,
		Type:          t,
		FromUserID:    from.ID,
		FromUserName:  from.Name,
		FromUserImage: from.ProfileImage,
		Content:       content,
		Timestamp:     s.now(),
	}
	s.notifications = slices.Insert(s.notifications, 0, n)
	s.storage.save(ctx, domain.KeyNotifications, s.notifications)
	s.metrics.notified(t)
	slog.Debug("notification created", "type", t, "recipient", recipientID, "from", from.ID)
}

func (s *SocialService) postLocked(id string) *domain.Post {
	if i := slices.IndexFunc(s.posts, func(p domain.Post) bool { return p.ID == id }); i >= 0 {
		return &s.posts[i]
	}
	return nil
}
