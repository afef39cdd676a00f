package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/event"
	"github.com/msomdec/proconnect/internal/service"
)

func pollInput(options ...string) service.PostInput {
	return service.PostInput{
		Content: "Which one?",
		Type:    domain.PostTypePoll,
		Poll:    &service.PollInput{Question: "Pick", Options: options},
	}
}

func TestSocialService_CreatePost(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	a := register(t, st.sessions, "A", "a@x.com")

	first, err := st.social.CreatePost(ctx, service.PostInput{Content: "hello"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if first.Type != domain.PostTypeText {
		t.Fatalf("expected default type text, got %q", first.Type)
	}
	if first.UserID != a.ID || first.UserName != "A" || first.UserTitle != a.Title {
		t.Fatalf("expected author snapshot of A, got %+v", first)
	}
	if !first.Timestamp.Equal(testNow) {
		t.Fatalf("expected timestamp %v, got %v", testNow, first.Timestamp)
	}

	second, err := st.social.CreatePost(ctx, service.PostInput{Content: ""})
	if err != nil {
		t.Fatalf("CreatePost with empty content: %v", err)
	}

	posts := st.social.Posts()
	if len(posts) != 2 || posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Fatal("expected newest post first")
	}
}

func TestSocialService_CreatePost_InvalidInput(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	register(t, st.sessions, "A", "a@x.com")

	tests := []struct {
		name string
		in   service.PostInput
	}{
		{"unknown type", service.PostInput{Content: "x", Type: "story"}},
		{"poll without poll", service.PostInput{Content: "x", Type: domain.PostTypePoll}},
		{"article without article", service.PostInput{Content: "x", Type: domain.PostTypeArticle}},
		{"one option", pollInput("only")},
		{"blank options", pollInput("X", " ", "")},
		{"no question", service.PostInput{Type: domain.PostTypePoll, Poll: &service.PollInput{Options: []string{"X", "Y"}}}},
		{"poll on text post", service.PostInput{Content: "x", Type: domain.PostTypeText, Poll: &service.PollInput{Question: "Q", Options: []string{"X", "Y"}}}},
		{"poll with default type", service.PostInput{Content: "x", Poll: &service.PollInput{Question: "Q", Options: []string{"X", "Y"}}}},
		{"article on poll post", service.PostInput{Type: domain.PostTypePoll, Poll: &service.PollInput{Question: "Q", Options: []string{"X", "Y"}}, Article: &domain.Article{Title: "T"}}},
		{"article on image post", service.PostInput{Content: "x", Type: domain.PostTypeImage, Article: &domain.Article{Title: "T"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := st.social.CreatePost(ctx, tt.in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if n := len(st.social.Posts()); n != 0 {
		t.Fatalf("expected no posts created, got %d", n)
	}
}

func TestSocialService_Article(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	register(t, st.sessions, "A", "a@x.com")

	post, err := st.social.CreatePost(context.Background(), service.PostInput{
		Content: "New article",
		Type:    domain.PostTypeArticle,
		Article: &domain.Article{Title: "Go", Excerpt: "Why Go", ReadTime: "3 min read"},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Article == nil || post.Article.Title != "Go" {
		t.Fatalf("expected article attached, got %+v", post.Article)
	}
}

// A creates a poll with options X and Y; B votes for X.
func TestSocialService_VotePoll(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	register(t, st.sessions, "A", "a@x.com")
	post, err := st.social.CreatePost(ctx, pollInput("X", "Y"))
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	b := register(t, st.sessions, "B", "b@x.com")

	poll, err := st.social.VotePoll(ctx, post.ID, 0)
	if err != nil {
		t.Fatalf("VotePoll: %v", err)
	}
	if poll.Options[0].Votes != 1 || poll.Options[1].Votes != 0 || poll.TotalVotes != 1 {
		t.Fatalf("unexpected tally: %+v", poll)
	}
	if !st.social.HasVoted(post.ID, b.ID) {
		t.Fatal("expected B to be recorded as a voter")
	}

	if _, err := st.social.VotePoll(ctx, post.ID, 1); !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("second vote: expected ErrAlreadyVoted, got %v", err)
	}
	got, _ := st.social.Post(post.ID)
	if got.Poll.TotalVotes != 1 || got.Poll.Options[1].Votes != 0 {
		t.Fatalf("repeat vote must leave the poll untouched: %+v", got.Poll)
	}
}

func TestSocialService_VotePoll_Errors(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	register(t, st.sessions, "A", "a@x.com")
	poll, _ := st.social.CreatePost(ctx, pollInput("X", "Y"))
	text, _ := st.social.CreatePost(ctx, service.PostInput{Content: "plain"})

	if _, err := st.social.VotePoll(ctx, "missing", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown post: expected ErrNotFound, got %v", err)
	}
	if _, err := st.social.VotePoll(ctx, text.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("post without poll: expected ErrInvalidInput, got %v", err)
	}
	for _, idx := range []int{-1, 2} {
		if _, err := st.social.VotePoll(ctx, poll.ID, idx); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("index %d: expected ErrInvalidInput, got %v", idx, err)
		}
	}

	got, _ := st.social.Post(poll.ID)
	sum := 0
	for _, o := range got.Poll.Options {
		sum += o.Votes
	}
	if got.Poll.TotalVotes != 0 || sum != 0 {
		t.Fatalf("failed votes must not change the tally: %+v", got.Poll)
	}
}

// A likes B's post once, then again.
func TestSocialService_LikePost_Toggle(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	post, _ := st.social.CreatePost(ctx, service.PostInput{Content: "mine"})
	a := register(t, st.sessions, "A", "a@x.com")

	liked, err := st.social.LikePost(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if !liked {
		t.Fatal("expected first call to like")
	}
	got, _ := st.social.Post(post.ID)
	if diff := cmp.Diff([]string{a.ID}, got.Likes); diff != "" {
		t.Fatalf("likes (-want +got):\n%s", diff)
	}
	likes := st.social.Notifications(b.ID, domain.FilterPosts)
	if len(likes) != 1 || likes[0].Type != domain.NotificationLike || likes[0].FromUserID != a.ID {
		t.Fatalf("expected one like notification for B, got %+v", likes)
	}
	if likes[0].Content != "liked your post" {
		t.Fatalf("unexpected content %q", likes[0].Content)
	}

	liked, err = st.social.LikePost(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikePost again: %v", err)
	}
	if liked {
		t.Fatal("expected second call to unlike")
	}
	got, _ = st.social.Post(post.ID)
	if len(got.Likes) != 0 {
		t.Fatalf("expected likes back to empty, got %v", got.Likes)
	}
	if n := len(st.social.Notifications(b.ID, domain.FilterAll)); n != 1 {
		t.Fatalf("unlike must not notify, got %d notifications", n)
	}
}

func TestSocialService_LikeOwnPost_NoNotification(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	a := register(t, st.sessions, "A", "a@x.com")
	post, _ := st.social.CreatePost(ctx, service.PostInput{Content: "mine"})

	if _, err := st.social.LikePost(ctx, post.ID); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if n := len(st.social.Notifications(a.ID, domain.FilterAll)); n != 0 {
		t.Fatalf("self-like must not notify, got %d", n)
	}
}

func TestSocialService_CommentPost(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	post, _ := st.social.CreatePost(ctx, service.PostInput{Content: "mine"})

	if _, err := st.social.CommentPost(ctx, post.ID, "own comment"); err != nil {
		t.Fatalf("CommentPost by author: %v", err)
	}
	if n := len(st.social.Notifications(b.ID, domain.FilterAll)); n != 0 {
		t.Fatalf("author comment must not notify, got %d", n)
	}

	a := register(t, st.sessions, "A", "a@x.com")
	c, err := st.social.CommentPost(ctx, post.ID, "Nice")
	if err != nil {
		t.Fatalf("CommentPost: %v", err)
	}
	if c.UserID != a.ID || c.Content != "Nice" {
		t.Fatalf("unexpected comment: %+v", c)
	}

	got, _ := st.social.Post(post.ID)
	if len(got.Comments) != 2 || got.Comments[1].ID != c.ID {
		t.Fatal("expected comments in arrival order")
	}
	notes := st.social.Notifications(b.ID, domain.FilterAll)
	if len(notes) != 1 || notes[0].Content != `commented on your post: "Nice"` {
		t.Fatalf("unexpected notifications: %+v", notes)
	}

	if _, err := st.social.CommentPost(ctx, post.ID, "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty comment: expected ErrInvalidInput, got %v", err)
	}
	if _, err := st.social.CommentPost(ctx, "missing", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown post: expected ErrNotFound, got %v", err)
	}
}

func TestSocialService_SendMessage(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	a := register(t, st.sessions, "A", "a@x.com")

	msg, err := st.social.SendMessage(ctx, b.ID, "hi B")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Read {
		t.Fatal("new messages are unread")
	}
	login(t, st.sessions, "b@x.com")
	if _, err := st.social.SendMessage(ctx, a.ID, "hi A"); err != nil {
		t.Fatalf("SendMessage reply: %v", err)
	}

	conv := st.social.Conversation(a.ID, b.ID)
	if len(conv) != 2 || conv[0].Content != "hi B" || conv[1].Content != "hi A" {
		t.Fatalf("unexpected conversation: %+v", conv)
	}
	convs := st.social.Conversations(a.ID)
	if len(convs) != 1 || convs[0].PartnerID != b.ID || convs[0].Count != 2 || convs[0].Last.Content != "hi A" {
		t.Fatalf("unexpected conversations: %+v", convs)
	}

	notes := st.social.Notifications(b.ID, domain.FilterAll)
	if len(notes) != 1 || notes[0].Type != domain.NotificationMessage || notes[0].Content != `sent you a message: "hi B"` {
		t.Fatalf("unexpected notifications for B: %+v", notes)
	}
}

func TestSocialService_SendMessage_Errors(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	a := register(t, st.sessions, "A", "a@x.com")

	if _, err := st.social.SendMessage(ctx, "ghost", "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown receiver: expected ErrNotFound, got %v", err)
	}
	if _, err := st.social.SendMessage(ctx, a.ID, "hi"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("self message: expected ErrInvalidInput, got %v", err)
	}
	register(t, st.sessions, "B", "b@x.com")
	if _, err := st.social.SendMessage(ctx, a.ID, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty message: expected ErrInvalidInput, got %v", err)
	}
}

func TestSocialService_MarkNotificationRead(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	post, _ := st.social.CreatePost(ctx, service.PostInput{Content: "mine"})
	register(t, st.sessions, "A", "a@x.com")
	if _, err := st.social.LikePost(ctx, post.ID); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	id := st.social.Notifications(b.ID, domain.FilterAll)[0].ID

	// Not addressed to A.
	if err := st.social.MarkNotificationRead(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign notification: expected ErrNotFound, got %v", err)
	}

	login(t, st.sessions, "b@x.com")
	if got := st.social.UnreadCount(b.ID); got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
	for i := 0; i < 2; i++ {
		if err := st.social.MarkNotificationRead(ctx, id); err != nil {
			t.Fatalf("MarkNotificationRead #%d: %v", i+1, err)
		}
	}
	if got := st.social.UnreadCount(b.ID); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
	if err := st.social.MarkNotificationRead(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestSocialService_ConnectionRequests(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	a := register(t, st.sessions, "A", "a@x.com")

	if err := st.social.SendConnectionRequest(ctx, b.ID); err != nil {
		t.Fatalf("SendConnectionRequest: %v", err)
	}
	if err := st.social.SendConnectionRequest(ctx, b.ID); err != nil {
		t.Fatalf("repeat SendConnectionRequest: %v", err)
	}
	target, _ := st.sessions.User(b.ID)
	if diff := cmp.Diff([]string{a.ID}, target.ConnectionRequests); diff != "" {
		t.Fatalf("B requests (-want +got):\n%s", diff)
	}
	notes := st.social.Notifications(b.ID, domain.FilterAll)
	if len(notes) != 1 || notes[0].Type != domain.NotificationConnection || notes[0].Content != "sent you a connection request" {
		t.Fatalf("expected one connection notification, got %+v", notes)
	}

	login(t, st.sessions, "b@x.com")
	if err := st.social.AcceptConnectionRequest(ctx, a.ID); err != nil {
		t.Fatalf("AcceptConnectionRequest: %v", err)
	}
	cur, _ := st.sessions.Current()
	requester, _ := st.sessions.User(a.ID)
	if !cur.IsConnectedTo(a.ID) || !requester.IsConnectedTo(b.ID) {
		t.Fatal("expected a symmetric connection")
	}
	if cur.HasRequestFrom(a.ID) {
		t.Fatal("expected request cleared")
	}
}

// A applies to job J twice in a row.
func TestSocialService_ApplyToJob(t *testing.T) {
	seed := service.Seed{Jobs: []domain.Job{{ID: "j1", Title: "Gopher", Company: "Acme", Location: "Remote", Applicants: []string{}}}}
	st := newTestStack(t, seed)
	ctx := context.Background()
	a := register(t, st.sessions, "A", "a@x.com")

	applied, err := st.social.ApplyToJob(ctx, "j1")
	if err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}
	if !applied {
		t.Fatal("expected a new application")
	}
	applied, err = st.social.ApplyToJob(ctx, "j1")
	if err != nil {
		t.Fatalf("ApplyToJob again: %v", err)
	}
	if applied {
		t.Fatal("repeat application should not count")
	}

	job, _ := st.social.Job("j1")
	if diff := cmp.Diff([]string{a.ID}, job.Applicants); diff != "" {
		t.Fatalf("applicants (-want +got):\n%s", diff)
	}
	notes := st.social.Notifications(a.ID, domain.FilterJobs)
	if len(notes) != 1 {
		t.Fatalf("expected exactly one confirmation, got %d", len(notes))
	}
	if notes[0].FromUserID != service.SystemUserID || notes[0].Content != "Your application has been submitted successfully" {
		t.Fatalf("unexpected confirmation: %+v", notes[0])
	}
	if got := st.social.AppliedJobs(a.ID); len(got) != 1 || got[0].ID != "j1" {
		t.Fatalf("AppliedJobs: %+v", got)
	}
	if _, err := st.social.ApplyToJob(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown job: expected ErrNotFound, got %v", err)
	}

	// Seed slices are not shared with the store.
	if len(seed.Jobs[0].Applicants) != 0 {
		t.Fatal("seed was mutated")
	}
}

// Logout followed by any mutating call.
func TestSocialService_UnauthenticatedMutations(t *testing.T) {
	st := newTestStack(t, service.DemoSeed("nobody", testNow))
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	if err := st.sessions.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	before := st.social.Posts()

	checks := map[string]func() error{
		"CreatePost":              func() error { _, err := st.social.CreatePost(ctx, service.PostInput{Content: "x"}); return err },
		"LikePost":                func() error { _, err := st.social.LikePost(ctx, "1"); return err },
		"CommentPost":             func() error { _, err := st.social.CommentPost(ctx, "1", "x"); return err },
		"VotePoll":                func() error { _, err := st.social.VotePoll(ctx, "4", 0); return err },
		"SendMessage":             func() error { _, err := st.social.SendMessage(ctx, b.ID, "x"); return err },
		"MarkNotificationRead":    func() error { return st.social.MarkNotificationRead(ctx, "1") },
		"SendConnectionRequest":   func() error { return st.social.SendConnectionRequest(ctx, b.ID) },
		"AcceptConnectionRequest": func() error { return st.social.AcceptConnectionRequest(ctx, b.ID) },
		"ApplyToJob":              func() error { _, err := st.social.ApplyToJob(ctx, "1"); return err },
		"UpdateProfile": func() error {
			name := "x"
			_, err := st.sessions.UpdateProfile(ctx, domain.UserPatch{Name: &name})
			return err
		},
	}
	for name, fn := range checks {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
	if diff := cmp.Diff(before, st.social.Posts()); diff != "" {
		t.Fatalf("posts changed without a session (-before +after):\n%s", diff)
	}
}

func TestSocialService_PersistsAcrossRestart(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()
	first := newTestStackOn(t, kv, service.Seed{})
	register(t, first.sessions, "A", "a@x.com")
	post, err := first.social.CreatePost(ctx, service.PostInput{Content: "persist me"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	// A different seed must not replace persisted collections.
	second := newTestStackOn(t, kv, service.DemoSeed("x", testNow))
	posts := second.social.Posts()
	if len(posts) != 1 || posts[0].ID != post.ID {
		t.Fatalf("expected persisted post, got %d posts", len(posts))
	}
	if n := len(second.social.Jobs()); n != 6 {
		t.Fatalf("expected absent jobs key to be seeded, got %d jobs", n)
	}
}

func TestSocialService_DegradesToMemory(t *testing.T) {
	kv := &failingKV{KeyValueStore: newTestKV(t)}
	st := newTestStackOn(t, kv, service.Seed{})
	ctx := context.Background()
	register(t, st.sessions, "A", "a@x.com")

	kv.Break()
	for i := 0; i < 5; i++ {
		if _, err := st.social.CreatePost(ctx, service.PostInput{Content: "still works"}); err != nil {
			t.Fatalf("CreatePost #%d: %v", i+1, err)
		}
	}
	if !st.storage.Degraded() {
		t.Fatal("expected storage to be degraded after repeated failures")
	}
	writes := kv.Writes()
	if _, err := st.social.CreatePost(ctx, service.PostInput{Content: "memory only"}); err != nil {
		t.Fatalf("CreatePost while degraded: %v", err)
	}
	if kv.Writes() != writes {
		t.Fatal("expected no writes once degraded")
	}
	if n := len(st.social.Posts()); n != 6 {
		t.Fatalf("expected 6 posts in memory, got %d", n)
	}
}

func TestSocialService_Reseed(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	rec := record(st.bus, event.PostsChanged, event.JobsChanged, event.NotificationsChanged)
	a := register(t, st.sessions, "A", "a@x.com")

	st.social.Reseed(context.Background(), service.DemoSeed(a.ID, testNow))

	if n := len(st.social.Posts()); n != 8 {
		t.Fatalf("expected 8 posts, got %d", n)
	}
	if n := len(st.social.Jobs()); n != 6 {
		t.Fatalf("expected 6 jobs, got %d", n)
	}
	if n := len(st.social.Notifications(a.ID, domain.FilterAll)); n != 5 {
		t.Fatalf("expected 5 notifications for A, got %d", n)
	}
	if got := st.social.UnreadCount(a.ID); got != 3 {
		t.Fatalf("expected 3 unread seed notifications, got %d", got)
	}
	if rec.count(event.PostsChanged) != 1 || rec.count(event.JobsChanged) != 1 {
		t.Fatal("expected change events after reseed")
	}
}

func TestSocialService_ReseedKeepsMessages(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	b := register(t, st.sessions, "B", "b@x.com")
	a := register(t, st.sessions, "A", "a@x.com")
	if _, err := st.social.SendMessage(ctx, b.ID, "hi B"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	st.social.Reseed(ctx, service.Seed{Messages: []domain.Message{{ID: "seeded"}}})

	got := st.social.Conversation(a.ID, b.ID)
	if len(got) != 1 || got[0].Content != "hi B" {
		t.Fatalf("expected the message to survive a reseed, got %+v", got)
	}
}

func TestSocialService_Queries(t *testing.T) {
	st := newTestStack(t, service.DemoSeed("me", testNow))

	if got := st.social.SearchJobs("DATA"); len(got) != 1 || got[0].Title != "Data Scientist" {
		t.Fatalf("SearchJobs by title: %+v", got)
	}
	if got := st.social.SearchJobs("new york"); len(got) != 1 || got[0].Company != "Innovation Labs" {
		t.Fatalf("SearchJobs by location: %+v", got)
	}
	if got := st.social.SearchJobs(""); len(got) != 6 {
		t.Fatalf("empty job search: expected all 6, got %d", len(got))
	}
	if got := st.social.PostsByUser("sample4"); len(got) != 1 || got[0].Poll == nil {
		t.Fatalf("PostsByUser: %+v", got)
	}
	if got := st.social.Notifications("me", domain.FilterPosts); len(got) != 2 {
		t.Fatalf("posts filter: expected like and comment, got %d", len(got))
	}
	if got := st.social.Notifications("me", domain.FilterMentions); len(got) != 0 {
		t.Fatalf("mentions filter: expected none, got %d", len(got))
	}
	if got := st.social.Notifications("someone-else", domain.FilterAll); len(got) != 0 {
		t.Fatalf("notifications leak across users: %d", len(got))
	}
	if _, err := st.social.Post("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Post: expected ErrNotFound, got %v", err)
	}
	if _, err := st.social.Job("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Job: expected ErrNotFound, got %v", err)
	}

	// Returned posts are copies.
	posts := st.social.Posts()
	posts[0].Likes[0] = "mutated"
	again, _ := st.social.Post(posts[0].ID)
	if again.Likes[0] == "mutated" {
		t.Fatal("Posts must return copies")
	}
}

func TestSocialService_Metrics(t *testing.T) {
	st := newTestStack(t, service.Seed{})
	ctx := context.Background()
	if _, err := st.social.CreatePost(ctx, service.PostInput{Content: "x"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	register(t, st.sessions, "A", "a@x.com")
	if _, err := st.social.CreatePost(ctx, service.PostInput{Content: "x"}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	families, err := st.metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "test_store_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["operation"] == "create_post" {
				outcomes[labels["outcome"]] = m.GetCounter().GetValue()
			}
		}
	}
	want := map[string]float64{"ok": 1, "unauthenticated": 1}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Fatalf("create_post outcomes (-want +got):\n%s", diff)
	}
}
