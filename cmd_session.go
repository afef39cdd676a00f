package main

import (
	"fmt"
	"strings"

	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/service"
	"github.com/spf13/cobra"
)

func (c *cli) registerCmd() *cobra.Command {
	var in service.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.Sessions.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! Signed in as %s (%s)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Title, "title", "", "headline, e.g. 'Software Engineer'")
	cmd.Flags().StringVar(&in.Location, "location", "", "location")
	cmd.Flags().StringVar(&in.ProfileImage, "image", "", "profile image URL")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.Sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Name, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := c.app.Sessions.Session()
			if !session.Authenticated {
				return domain.ErrUnauthenticated
			}
			user := session.User
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	var (
		name, email, title, location, about, image, cover string
		skills                                            []string
	)
	cmd := &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a profile, or edit your own with flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.UserPatch
			flags := cmd.Flags()
			set := func(flag string, dst **string, v *string) {
				if flags.Changed(flag) {
					*dst = v
				}
			}
			set("name", &patch.Name, &name)
			set("email", &patch.Email, &email)
			set("title", &patch.Title, &title)
			set("location", &patch.Location, &location)
			set("about", &patch.About, &about)
			set("image", &patch.ProfileImage, &image)
			set("cover", &patch.CoverImage, &cover)
			if flags.Changed("skills") {
				patch.Skills = &skills
			}

			if patch != (domain.UserPatch{}) {
				if len(args) > 0 {
					return fmt.Errorf("%w: only your own profile can be edited", domain.ErrInvalidInput)
				}
				user, err := c.app.Sessions.UpdateProfile(cmd.Context(), patch)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), *user, 0)
				return nil
			}

			me, meErr := c.app.Sessions.Current()
			if len(args) == 0 {
				if meErr != nil {
					return meErr
				}
				printProfile(cmd.OutOrStdout(), me, 0)
				return nil
			}
			user, err := c.app.Sessions.User(args[0])
			if err != nil {
				return err
			}
			mutual := 0
			if meErr == nil && me.ID != user.ID {
				mutual = c.app.Sessions.MutualConnections(me.ID, user.ID)
			}
			printProfile(cmd.OutOrStdout(), user, mutual)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&email, "email", "", "new email")
	f.StringVar(&title, "title", "", "new headline")
	f.StringVar(&location, "location", "", "new location")
	f.StringVar(&about, "about", "", "new about text")
	f.StringVar(&image, "image", "", "new profile image URL")
	f.StringVar(&cover, "cover", "", "new cover image URL")
	f.StringSliceVar(&skills, "skills", nil, "comma-separated skills, replacing the current list")
	return cmd
}

func (c *cli) peopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people [query]",
		Short: "Search people by name or headline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tTITLE\tLOCATION")
			for _, u := range c.app.Sessions.SearchPeople(query) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Title, u.Location)
			}
			return w.Flush()
		},
	}
}

func (c *cli) connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <user-id>",
		Short: "Send a connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Social.SendConnectionRequest(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connection request sent")
			return nil
		},
	}
}

func (c *cli) acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <user-id>",
		Short: "Accept a pending connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Social.AcceptConnectionRequest(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Connected")
			return nil
		},
	}
}

func (c *cli) invitationsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "invitations",
		Short: "List pending requests and people you may know",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pending, err := c.app.Sessions.PendingRequests()
			if err != nil {
				return err
			}
			suggestions, err := c.app.Sessions.Suggestions(limit)
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintf(w, "Pending (%d)\n", len(pending))
			for _, u := range pending {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", u.ID, u.Name, u.Title)
			}
			fmt.Fprintln(w, "People you may know")
			for _, s := range suggestions {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%d mutual\n", s.User.ID, s.User.Name, s.User.Title, s.Mutual)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum suggestions")
	return cmd
}
