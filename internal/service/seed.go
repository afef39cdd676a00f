package service

import (
	"fmt"
	"time"

	"github.com/msomdec/proconnect/internal/domain"
)

// Seed is the initial content of a SocialService. It is copied on use.
type Seed struct {
	Posts         []domain.Post
	Jobs          []domain.Job
	Messages      []domain.Message
	Notifications []domain.Notification
}

// System identity used as the sender of confirmation notifications.
const (
	SystemUserID    = "system"
	SystemUserName  = "ProConnect"
	systemUserImage = "https://images.pexels.com/photos/267350/pexels-photo-267350.jpeg?auto=compress&cs=tinysrgb&w=400"
)

func pexels(id, width int) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=%d", id, id, width)
}

// DemoSeed returns the demo feed, jobs board and notifications. The
// notifications are addressed to recipientID; timestamps are relative to now.
func DemoSeed(recipientID string, now time.Time) Seed {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	posts := []domain.Post{
		{
			ID: "1", UserID: "sample1", UserName: "Sarah Johnson", UserTitle: "Software Engineer at Google",
			UserImage: pexels(1181519, 400),
			Content:   "🎉 Excited to share that I just completed my first full-stack project using React and Node.js! What's your favorite tech stack for full-stack development? #WebDevelopment",
			Image:     pexels(1181675, 800),
			Likes:     []string{"user1", "user2", "user3"},
			Comments: []domain.Comment{{
				ID: "c1", UserID: "user2", UserName: "Alex Chen", UserImage: pexels(1222271, 400),
				Content: "Congratulations Sarah! Your dedication really paid off. Keep up the great work! 👏", Timestamp: ago(30 * time.Minute),
			}},
			Timestamp: now,
			Type:      domain.PostTypeCelebration,
		},
		{
			ID: "2", UserID: "sample2", UserName: "Michael Chen", UserTitle: "Product Manager at Microsoft",
			UserImage: pexels(1222271, 400),
			Content:   "Just attended an amazing conference on AI and Machine Learning. The future of technology is here! 🚀\n\nKey takeaway: collaboration between humans and AI is the key to success.",
			Likes:     []string{"user3", "user4", "user5", "user6"},
			Comments: []domain.Comment{{
				ID: "c2", UserID: "user3", UserName: "Emily Rodriguez", UserImage: pexels(1181686, 400),
				Content: "Great insights Michael! AI tools have already transformed how I approach UX research.", Timestamp: ago(45 * time.Minute),
			}},
			Timestamp: ago(time.Hour),
			Type:      domain.PostTypeText,
		},
		{
			ID: "3", UserID: "sample3", UserName: "Emily Rodriguez", UserTitle: "UX Designer at Adobe",
			UserImage: pexels(1181686, 400),
			Content:   "Design thinking isn't just about pretty interfaces - it's about solving real human problems. 💡 Today a small redesign lifted a nonprofit's completed donations by 40%.",
			Image:     pexels(196644, 800),
			Likes:     []string{"user1", "user2", "user4", "user7", "user8"},
			Comments:  []domain.Comment{},
			Timestamp: ago(2 * time.Hour),
			Type:      domain.PostTypeImage,
		},
		{
			ID: "4", UserID: "sample4", UserName: "David Kim", UserTitle: "Data Scientist at Netflix",
			UserImage: pexels(1043471, 400),
			Content:   "Quick poll for my network: What's the most important skill for data scientists in 2024? 📊",
			Likes:     []string{"user2", "user5"},
			Comments:  []domain.Comment{},
			Timestamp: ago(3 * time.Hour),
			Type:      domain.PostTypePoll,
			Poll: &domain.Poll{
				Question: "What's the most important skill for data scientists in 2024?",
				Options: []domain.PollOption{
					{Text: "Machine Learning & AI", Votes: 45},
					{Text: "Data Visualization", Votes: 23},
					{Text: "Business Communication", Votes: 67},
					{Text: "Cloud Computing", Votes: 31},
				},
				TotalVotes: 166,
			},
		},
		{
			ID: "5", UserID: "sample5", UserName: "Lisa Wang", UserTitle: "Marketing Director at Spotify",
			UserImage: pexels(1130626, 400),
			Content:   "Just published a new article on the future of digital marketing! 📝 Would love to hear your thoughts in the comments!",
			Likes:     []string{"user1", "user3", "user6", "user9"},
			Comments: []domain.Comment{{
				ID: "c3", UserID: "user6", UserName: "James Wilson", UserImage: pexels(1516680, 400),
				Content: "Excellent article Lisa! The section on predictive analytics was particularly insightful.", Timestamp: ago(90 * time.Minute),
			}},
			Timestamp: ago(4 * time.Hour),
			Type:      domain.PostTypeArticle,
			Article: &domain.Article{
				Title:    "The Future of Digital Marketing: Personalization at Scale",
				Excerpt:  "Exploring how AI and machine learning are revolutionizing customer experiences and marketing strategies in the digital age...",
				ReadTime: "5 min read",
			},
		},
		{
			ID: "6", UserID: "sample6", UserName: "Robert Thompson", UserTitle: "DevOps Engineer at Tesla",
			UserImage: pexels(1040881, 400),
			Content:   "🔧 Just implemented a new CI/CD pipeline that reduced our deployment time by 75%! DevOps is all about continuous improvement! #DevOps #CICD",
			Image:     pexels(3184291, 800),
			Likes:     []string{"user2", "user4", "user7", "user10"},
			Comments:  []domain.Comment{},
			Timestamp: ago(5 * time.Hour),
			Type:      domain.PostTypeImage,
		},
		{
			ID: "7", UserID: "sample7", UserName: "Maria Garcia", UserTitle: "Product Designer at Airbnb",
			UserImage: pexels(1858175, 400),
			Content:   "🎨 78% of users make booking decisions within the first 30 seconds of viewing a listing. User research continues to be the foundation of great design.",
			Likes:     []string{"user1", "user3", "user5", "user8", "user11"},
			Comments: []domain.Comment{{
				ID: "c4", UserID: "user3", UserName: "Emily Rodriguez", UserImage: pexels(1181686, 400),
				Content: "Love this Maria! User interviews combined with analytics data always give me the best insights.", Timestamp: ago(6 * time.Hour),
			}},
			Timestamp: ago(6 * time.Hour),
			Type:      domain.PostTypeText,
		},
		{
			ID: "8", UserID: "sample8", UserName: "Alex Johnson", UserTitle: "Startup Founder & CEO at TechFlow",
			UserImage: pexels(1239291, 400),
			Content:   "🚀 Exciting news! TechFlow just closed our Series A funding round! $12M to accelerate our mission of democratizing data analytics for small businesses.",
			Image:     pexels(3184338, 800),
			Likes:     []string{"user2", "user4", "user6", "user9", "user12", "user13"},
			Comments: []domain.Comment{{
				ID: "c5", UserID: "user2", UserName: "Michael Chen", UserImage: pexels(1222271, 400),
				Content: "Congratulations Alex! Well deserved.", Timestamp: ago(7 * time.Hour),
			}},
			Timestamp: ago(7 * time.Hour),
			Type:      domain.PostTypeCelebration,
		},
	}

	jobs := []domain.Job{
		{
			ID: "1", Title: "Senior Frontend Developer", Company: "TechCorp Inc.", Location: "San Francisco, CA", Type: "Full-time",
			Description:  "We are looking for a Senior Frontend Developer to join our dynamic team and build exceptional user experiences.",
			Requirements: []string{"5+ years of frontend development experience", "Expert knowledge of JavaScript, HTML, CSS", "Experience with React or Vue.js"},
			Salary:       "$120,000 - $160,000", CompanyLogo: pexels(450035, 100),
			Applicants: []string{"user1", "user2"}, Timestamp: now,
			Featured: true, Remote: true,
		},
		{
			ID: "2", Title: "Product Manager", Company: "Innovation Labs", Location: "New York, NY", Type: "Full-time",
			Description:  "Join our product team to drive the development of cutting-edge solutions.",
			Requirements: []string{"3+ years of product management experience", "Strong analytical and problem-solving skills", "Experience with agile development methodologies"},
			Salary:       "$110,000 - $140,000", CompanyLogo: pexels(3184465, 100),
			Applicants: []string{"user3"}, Timestamp: ago(24 * time.Hour),
		},
		{
			ID: "3", Title: "UX/UI Designer", Company: "Creative Studio", Location: "Los Angeles, CA", Type: "Contract",
			Description:  "We're seeking a talented UX/UI Designer to create intuitive and engaging user experiences.",
			Requirements: []string{"4+ years of UX/UI design experience", "Proficiency in Figma, Sketch, or Adobe XD", "Strong portfolio showcasing design process"},
			Salary:       "$80,000 - $100,000", CompanyLogo: pexels(3184339, 100),
			Applicants: []string{}, Timestamp: ago(48 * time.Hour),
			Remote: true,
		},
		{
			ID: "4", Title: "Data Scientist", Company: "DataFlow Analytics", Location: "Seattle, WA", Type: "Full-time",
			Description:  "Help us unlock insights from complex datasets and drive data-driven decision making.",
			Requirements: []string{"PhD or Masters in Data Science, Statistics, or related field", "Experience with Python, R, and SQL", "Knowledge of machine learning algorithms"},
			Salary:       "$130,000 - $170,000", CompanyLogo: pexels(3184287, 100),
			Applicants: []string{"user4", "user5"}, Timestamp: ago(72 * time.Hour),
			Featured: true, Remote: true, Urgent: true,
		},
		{
			ID: "5", Title: "DevOps Engineer", Company: "CloudTech Solutions", Location: "Austin, TX", Type: "Full-time",
			Description:  "Build and maintain scalable infrastructure and deployment pipelines.",
			Requirements: []string{"3+ years of DevOps experience", "Experience with Docker and Kubernetes", "Knowledge of CI/CD pipelines"},
			Salary:       "$115,000 - $145,000", CompanyLogo: pexels(3184306, 100),
			Applicants: []string{"user6"}, Timestamp: ago(96 * time.Hour),
			Remote: true,
		},
		{
			ID: "6", Title: "Mobile App Developer", Company: "AppVenture", Location: "Miami, FL", Type: "Full-time",
			Description:  "Create innovative mobile applications that delight users.",
			Requirements: []string{"4+ years of mobile development experience", "Proficiency in Swift/Kotlin or React Native", "Experience with mobile app architecture"},
			Salary:       "$105,000 - $135,000", CompanyLogo: pexels(3184317, 100),
			Applicants: []string{}, Timestamp: ago(120 * time.Hour),
		},
	}

	notifications := []domain.Notification{
		{
			ID: "1", UserID: recipientID, Type: domain.NotificationLike,
			FromUserID: "user1", FromUserName: "Sarah Johnson", FromUserImage: pexels(1181519, 400),
			Content: "liked your post about web development trends", Timestamp: ago(30 * time.Minute),
		},
		{
			ID: "2", UserID: recipientID, Type: domain.NotificationComment,
			FromUserID: "user2", FromUserName: "Michael Chen", FromUserImage: pexels(1222271, 400),
			Content: `commented on your post: "Great insights! I completely agree with your perspective on AI."`, Timestamp: ago(time.Hour),
		},
		{
			ID: "3", UserID: recipientID, Type: domain.NotificationConnection,
			FromUserID: "user3", FromUserName: "Emily Rodriguez", FromUserImage: pexels(1181686, 400),
			Content: "accepted your connection request", Timestamp: ago(2 * time.Hour),
		},
		{
			ID: "4", UserID: recipientID, Type: domain.NotificationBirthday,
			FromUserID: "user4", FromUserName: "David Kim", FromUserImage: pexels(1043471, 400),
			Content: "has a birthday today", Timestamp: ago(3 * time.Hour), Read: true,
		},
		{
			ID: "5", UserID: recipientID, Type: domain.NotificationWorkAnniversary,
			FromUserID: "user5", FromUserName: "Lisa Wang", FromUserImage: pexels(1130626, 400),
			Content: "is celebrating 3 years at Spotify", Timestamp: ago(4 * time.Hour), Read: true,
		},
	}

	return Seed{Posts: posts, Jobs: jobs, Messages: []domain.Message{}, Notifications: notifications}
}

func (s Seed) clone() Seed {
	out := Seed{
		Posts:         make([]domain.Post, 0, len(s.Posts)),
		Jobs:          make([]domain.Job, 0, len(s.Jobs)),
		Messages:      append([]domain.Message{}, s.Messages...),
		Notifications: append([]domain.Notification{}, s.Notifications...),
	}
	for _, p := range s.Posts {
		out.Posts = append(out.Posts, p.Clone())
	}
	for _, j := range s.Jobs {
		out.Jobs = append(out.Jobs, j.Clone())
	}
	return out
}
