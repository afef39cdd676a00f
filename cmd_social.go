package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/service"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func (c *cli) postCmd() *cobra.Command {
	var (
		in                    service.PostInput
		postType, question    string
		options               []string
		articleTitle, excerpt string
		readTime              string
	)
	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a post, poll or article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Content = args[0]
			in.Type = domain.PostType(postType)
			if cmd.Flags().Changed("question") || len(options) > 0 {
				in.Poll = &service.PollInput{Question: question, Options: options}
				if in.Type == "" {
					in.Type = domain.PostTypePoll
				}
			}
			if articleTitle != "" {
				in.Article = &domain.Article{Title: articleTitle, Excerpt: excerpt, ReadTime: readTime}
				if in.Type == "" {
					in.Type = domain.PostTypeArticle
				}
			}
			post, err := c.app.Social.CreatePost(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", post.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Image, "image", "", "image URL")
	f.StringVar(&postType, "type", "", "text, image, video, article, poll or celebration")
	f.StringVar(&question, "question", "", "poll question")
	f.StringArrayVar(&options, "option", nil, "poll option (repeat for each option)")
	f.StringVar(&articleTitle, "article-title", "", "article title")
	f.StringVar(&excerpt, "excerpt", "", "article excerpt")
	f.StringVar(&readTime, "read-time", "", "article read time, e.g. '5 min read'")
	return cmd
}

func (c *cli) feedCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the feed, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts := c.app.Social.Posts()
			if userID != "" {
				posts = c.app.Social.PostsByUser(userID)
			}
			viewer := ""
			if me, err := c.app.Sessions.Current(); err == nil {
				viewer = me.ID
			}
			out := cmd.OutOrStdout()
			for _, p := range posts {
				printPost(out, p, viewer, c.app.Social.HasVoted(p.ID, viewer))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only posts by this user id")
	return cmd
}

func (c *cli) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or unlike it if you already do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			liked, err := c.app.Social.LikePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if liked {
				fmt.Fprintln(cmd.OutOrStdout(), "Liked")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Unliked")
			}
			return nil
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, err := c.app.Social.CommentPost(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commented %s\n", comment.ID)
			return nil
		},
	}
}

func (c *cli) voteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <post-id> <option-number>",
		Short: "Vote in a poll; options are numbered from 1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: option must be a number", domain.ErrInvalidInput)
			}
			poll, err := c.app.Social.VotePoll(cmd.Context(), args[0], n-1)
			if err != nil {
				return err
			}
			printPoll(cmd.OutOrStdout(), poll, true)
			return nil
		},
	}
}

func (c *cli) jobsCmd() *cobra.Command {
	var applied bool
	cmd := &cobra.Command{
		Use:   "jobs [query]",
		Short: "Search the jobs board by title, company or location",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := c.app.Social.SearchJobs(strings.Join(args, " "))
			if applied {
				me, err := c.app.Sessions.Current()
				if err != nil {
					return err
				}
				jobs = c.app.Social.AppliedJobs(me.ID)
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\tSALARY\tAPPLICANTS\t")
			for _, j := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					j.ID, j.Title, j.Company, j.Location, j.Type, j.Salary, len(j.Applicants), jobBadges(j))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&applied, "applied", false, "only jobs you applied to")
	return cmd
}

func (c *cli) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := c.app.Social.ApplyToJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "Application submitted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "You already applied to this job")
			}
			return nil
		},
	}
}

func (c *cli) messageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <user-id> <text>",
		Short: "Send a direct message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Social.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Message sent")
			return nil
		},
	}
}

func (c *cli) inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox [user-id]",
		Short: "List conversations, or show one in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := c.app.Sessions.Current()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				for _, m := range c.app.Social.Conversation(me.ID, args[0]) {
					from := c.displayName(m.SenderID)
					fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Format("Jan 2 15:04"), from, m.Content)
				}
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, "WITH\tMESSAGES\tLAST")
			for _, conv := range c.app.Social.Conversations(me.ID) {
				fmt.Fprintf(w, "%s (%s)\t%d\t%s\n", c.displayName(conv.PartnerID), conv.PartnerID, conv.Count, ago(conv.Last.Timestamp))
			}
			return w.Flush()
		},
	}
}

func (c *cli) notificationsCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List your notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Sessions.Current()
			if err != nil {
				return err
			}
			f := domain.NotificationFilter(filter)
			switch f {
			case domain.FilterAll, domain.FilterJobs, domain.FilterPosts, domain.FilterMentions:
			default:
				return fmt.Errorf("%w: unknown filter %q", domain.ErrInvalidInput, filter)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d unread\n", c.app.Social.UnreadCount(me.ID))
			w := newTable(out)
			for _, n := range c.app.Social.Notifications(me.ID, f) {
				mark := " "
				if !n.Read {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s\t%s %s\t%s\n", mark, n.ID, n.FromUserName, n.Content, ago(n.Timestamp))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(domain.FilterAll), "all, jobs, posts or mentions")
	return cmd
}

func (c *cli) readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Social.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Marked as read")
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	var metrics bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show network totals and storage health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			w := newTable(out)
			fmt.Fprintf(w, "users\t%d\n", len(c.app.Sessions.Users()))
			fmt.Fprintf(w, "posts\t%d\n", len(c.app.Social.Posts()))
			fmt.Fprintf(w, "jobs\t%d\n", len(c.app.Social.Jobs()))
			if me, err := c.app.Sessions.Current(); err == nil {
				fmt.Fprintf(w, "connections\t%d\n", len(me.Connections))
				fmt.Fprintf(w, "unread notifications\t%d\n", c.app.Social.UnreadCount(me.ID))
			}
			fmt.Fprintf(w, "storage degraded\t%t\n", c.app.Storage.Degraded())
			keys, err := c.app.DB.KV().Keys(cmd.Context())
			if err != nil {
				return fmt.Errorf("list persisted keys: %w", err)
			}
			fmt.Fprintf(w, "persisted keys\t%s\n", strings.Join(keys, ", "))
			if err := w.Flush(); err != nil {
				return err
			}
			if !metrics {
				return nil
			}

			families, err := c.app.Metrics.Registry.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "also print this process's metrics in Prometheus text format")
	return cmd
}

func (c *cli) displayName(userID string) string {
	if u, err := c.app.Sessions.User(userID); err == nil {
		return u.Name
	}
	return userID
}
