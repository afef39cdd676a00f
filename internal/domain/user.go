package domain

import "slices"

// User represents a registered member of the network.
type User struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Email              string       `json:"email"`
	PasswordHash       string       `json:"passwordHash,omitempty"`
	Title              string       `json:"title"`
	Location           string       `json:"location"`
	ProfileImage       string       `json:"profileImage"`
	CoverImage         string       `json:"coverImage"`
	About              string       `json:"about"`
	Experience         []Experience `json:"experience"`
	Education          []Education  `json:"education"`
	Skills             []string     `json:"skills"`
	Connections        []string     `json:"connections"`
	ConnectionRequests []string     `json:"connectionRequests"` // inbound only
}

type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Education struct {
	ID       string `json:"id"`
	School   string `json:"school"`
	Degree   string `json:"degree"`
	Field    string `json:"field"`
	Duration string `json:"duration"`
}

// UserPatch carries a partial profile update. Nil fields are left as they are.
type UserPatch struct {
	Name         *string
	Email        *string
	Title        *string
	Location     *string
	ProfileImage *string
	CoverImage   *string
	About        *string
	Experience   *[]Experience
	Education    *[]Education
	Skills       *[]string
}

// Apply merges the non-nil fields of p into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.CoverImage != nil {
		u.CoverImage = *p.CoverImage
	}
	if p.About != nil {
		u.About = *p.About
	}
	if p.Experience != nil {
		u.Experience = slices.Clone(*p.Experience)
	}
	if p.Education != nil {
		u.Education = slices.Clone(*p.Education)
	}
	if p.Skills != nil {
		u.Skills = slices.Clone(*p.Skills)
	}
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	u.Experience = slices.Clone(u.Experience)
	u.Education = slices.Clone(u.Education)
	u.Skills = slices.Clone(u.Skills)
	u.Connections = slices.Clone(u.Connections)
	u.ConnectionRequests = slices.Clone(u.ConnectionRequests)
	return u
}

// Public returns a deep copy with the password hash removed.
func (u User) Public() User {
	c := u.Clone()
	c.PasswordHash = ""
	return c
}

// IsConnectedTo reports whether id is in the user's connections.
func (u User) IsConnectedTo(id string) bool {
	return slices.Contains(u.Connections, id)
}

// HasRequestFrom reports whether id has a pending inbound request.
func (u User) HasRequestFrom(id string) bool {
	return slices.Contains(u.ConnectionRequests, id)
}
