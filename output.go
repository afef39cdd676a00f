package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/msomdec/proconnect/internal/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProfile(w io.Writer, u domain.User, mutual int) {
	fmt.Fprintf(w, "%s\n%s · %s\n", u.Name, u.Title, u.Location)
	fmt.Fprintf(w, "id: %s  email: %s\n", u.ID, u.Email)
	fmt.Fprintf(w, "%d connections", len(u.Connections))
	if mutual > 0 {
		fmt.Fprintf(w, ", %d mutual", mutual)
	}
	fmt.Fprintln(w)
	if u.About != "" {
		fmt.Fprintf(w, "\n%s\n", u.About)
	}
	if len(u.Skills) > 0 {
		fmt.Fprintf(w, "\nSkills: %s\n", strings.Join(u.Skills, ", "))
	}
	for _, e := range u.Experience {
		fmt.Fprintf(w, "\n%s at %s (%s)\n", e.Title, e.Company, e.Duration)
	}
	for _, e := range u.Education {
		fmt.Fprintf(w, "\n%s, %s in %s (%s)\n", e.School, e.Degree, e.Field, e.Duration)
	}
}

func printPost(w io.Writer, p domain.Post, viewer string, voted bool) {
	fmt.Fprintf(w, "── %s · %s · %s [%s]\n", p.UserName, p.UserTitle, ago(p.Timestamp), p.ID)
	if p.Content != "" {
		fmt.Fprintln(w, p.Content)
	}
	if p.Image != "" {
		fmt.Fprintf(w, "image: %s\n", p.Image)
	}
	if p.Article != nil {
		fmt.Fprintf(w, "article: %s (%s)\n  %s\n", p.Article.Title, p.Article.ReadTime, p.Article.Excerpt)
	}
	if p.Poll != nil {
		printPoll(w, *p.Poll, voted)
	}
	liked := ""
	if viewer != "" && p.LikedBy(viewer) {
		liked = " (you)"
	}
	fmt.Fprintf(w, "%d likes%s · %d comments\n", len(p.Likes), liked, len(p.Comments))
	for _, c := range p.Comments {
		fmt.Fprintf(w, "  %s: %s\n", c.UserName, c.Content)
	}
	fmt.Fprintln(w)
}

// printPoll shows vote shares only once the viewer has voted.
func printPoll(w io.Writer, poll domain.Poll, showResults bool) {
	fmt.Fprintf(w, "poll: %s\n", poll.Question)
	for i, o := range poll.Options {
		if !showResults {
			fmt.Fprintf(w, "  %d. %s\n", i+1, o.Text)
			continue
		}
		pct := 0
		if poll.TotalVotes > 0 {
			pct = o.Votes * 100 / poll.TotalVotes
		}
		fmt.Fprintf(w, "  %d. %-30s %3d%% (%d)\n", i+1, o.Text, pct, o.Votes)
	}
	fmt.Fprintf(w, "  %d votes\n", poll.TotalVotes)
}

func jobBadges(j domain.Job) string {
	var badges []string
	if j.Featured {
		badges = append(badges, "featured")
	}
	if j.Remote {
		badges = append(badges, "remote")
	}
	if j.Urgent {
		badges = append(badges, "urgent")
	}
	return strings.Join(badges, ",")
}

func ago(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
