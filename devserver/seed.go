package devserver

import (
	"time"

	shared "uniforum/shared"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password123"

type seedAccount struct {
	user *shared.User
}

func seedAccounts() []seedAccount {
	mk := func(id, username, name string, role shared.Role, extra func(u *shared.User)) seedAccount {
		u := &shared.User{
			Id:            id,
			Username:      username,
			Name:          name,
			Email:         username + "@wayne.edu",
			Role:          role,
			Avatar:        "https://api.dicebear.com/8.x/avataaars/svg?seed=" + username,
			EmailVerified: true,
		}
		if extra != nil {
			extra(u)
		}
		return seedAccount{user: u}
	}

	return []seedAccount{
		mk("u_wsu_001", "jean", "Jean D.", shared.RoleStudent, func(u *shared.User) {
			u.Major = "Computer Science"
			u.Classification = "Junior"
			u.Bio = "CS student passionate about AI and web development."
		}),
		mk("u_ali", "ali", "Ali Z.", shared.RoleStudent, nil),
		mk("u_jay", "jay", "Jay M.", shared.RoleStudent, nil),
		mk("u_robotics", "robotics", "WSU Robotics", shared.RoleStaff, nil),
		mk("u_sarah", "sarah", "Sarah K.", shared.RoleStudent, nil),
		mk("u_drsmith", "drsmith", "Dr. Smith", shared.RoleFaculty, func(u *shared.User) {
			u.Department = "Computer Science"
		}),
		mk("u_mike", "mike", "Mike L.", shared.RoleStudent, nil),
		mk("u_emma", "emma", "Emma T.", shared.RoleStudent, nil),
		mk("u_alex", "alex", "Alex P.", shared.RoleStudent, nil),
		mk("u_career", "career", "Career Services", shared.RoleStaff, nil),
		mk("u_jason", "jason", "Jason R.", shared.RoleStudent, nil),
		mk("u_admin", "admin", "Forum Admin", shared.RoleAdmin, nil),
	}
}

func seedTopics() []*shared.Topic {
	return []*shared.Topic{
		{Id: "t1", Name: "Announcements", Description: "Official WSU announcements", Followers: 1234, Color: "#0c5449"},
		{Id: "t2", Name: "CS & AI", Description: "Computer Science and AI discussions", Followers: 856, Color: "#3b82f6"},
		{Id: "t3", Name: "Events", Description: "Campus events and activities", Followers: 2103, Color: "#f59e0b"},
		{Id: "t4", Name: "Housing", Description: "Housing and roommate finder", Followers: 445, Color: "#8b5cf6"},
		{Id: "t5", Name: "Marketplace", Description: "Buy, sell, and trade", Followers: 678, Color: "#10b981"},
		{Id: "t6", Name: "Study Groups", Description: "Find study partners", Followers: 523, Color: "#ec4899"},
		{Id: "t7", Name: "Career", Description: "Jobs, internships, and career advice", Followers: 892, Color: "#6366f1"},
		{Id: "t8", Name: "Sports", Description: "WSU athletics and intramurals", Followers: 1567, Color: "#ef4444"},
	}
}

func seedSubforums() []*shared.SubForum {
	everyone := []shared.Role{shared.RoleStudent, shared.RoleFaculty, shared.RoleStaff, shared.RoleAlumni, shared.RoleAdmin}
	staffOnly := []shared.Role{shared.RoleFaculty, shared.RoleStaff, shared.RoleAdmin}

	return []*shared.SubForum{
		{Id: "cs", Name: "Computer Science", Description: "Programming, algorithms, tech discussions", Category: shared.SubforumCategoryAcademics, Color: "#3b82f6", Access: everyone, Members: 412},
		{Id: "engineering", Name: "Engineering", Description: "All engineering disciplines", Category: shared.SubforumCategoryAcademics, Color: "#f59e0b", Access: everyone, Members: 288},
		{Id: "clubs", Name: "Clubs & Orgs", Description: "Student organizations and club news", Category: shared.SubforumCategoryCampusLife, Color: "#ec4899", Access: everyone, Members: 530},
		{Id: "roommates", Name: "Roommates", Description: "Find a roommate or a place to live", Category: shared.SubforumCategoryCampusLife, Color: "#8b5cf6", Access: everyone, Members: 201},
		{Id: "marketplace", Name: "Marketplace", Description: "Textbooks, furniture and more", Category: shared.SubforumCategoryCampusLife, Color: "#10b981", Access: everyone, Members: 377},
		{Id: "internships", Name: "Internships", Description: "Internship postings and advice", Category: shared.SubforumCategoryCareer, Color: "#6366f1", Access: everyone, Members: 309},
		{Id: "announcements", Name: "Announcements", Description: "Official university news", Category: shared.SubforumCategoryGeneral, Color: "#0c5449", Access: everyone, PostAccess: staffOnly, Members: 1804},
		{Id: "study-groups", Name: "Study Groups", Description: "Find study partners", Category: shared.SubforumCategoryGeneral, Color: "#ec4899", Access: everyone, Members: 254},
		{Id: "student-lounge", Name: "Student Lounge", Description: "Students only", Category: shared.SubforumCategoryStudentOnly, Color: "#f97316", Access: []shared.Role{shared.RoleStudent, shared.RoleAdmin}, Members: 640},
		{Id: "faculty-lounge", Name: "Faculty & Staff Lounge", Description: "Faculty and staff only", Category: shared.SubforumCategoryFacultyStaff, Color: "#64748b", Access: staffOnly, Members: 96},
	}
}

type seedPost struct {
	post    *shared.Post
	likedBy []string
	savedBy []string
}

func seedPosts(now time.Time, authors map[string]*shared.Author) []seedPost {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	comment := func(id, authorId, text string, age time.Duration) *shared.Comment {
		return &shared.Comment{Id: id, Author: authors[authorId], Text: text, CreatedAt: ago(age)}
	}

	return []seedPost{
		{
			post: &shared.Post{
				Id: "p1", Author: authors["u_ali"], SubforumId: "cs", TopicId: "t2", TopicName: "CS & AI",
				Title:       "Best starter project for CNNs?",
				Body:        "Trying to build something simple that still teaches the core ideas. Any suggestions for a beginner-friendly project?",
				ContentType: shared.ContentTypeDiscussion, Likes: 9, CreatedAt: ago(2 * time.Hour),
				Comments: []*shared.Comment{
					comment("c1", "u_jay", "MNIST or CIFAR-10 is perfect. Keep it small, track overfitting.", time.Hour),
				},
			},
			savedBy: []string{"u_wsu_001"},
		},
		{
			post: &shared.Post{
				Id: "p2", Author: authors["u_robotics"], SubforumId: "clubs", TopicId: "t3", TopicName: "Events",
				Title:       "Tonight: drivetrain tear-down stream",
				Body:        "We'll live stream at 7pm. Bring questions about brushless motors & PID tuning. Everyone welcome!",
				ContentType: shared.ContentTypeEvent, Likes: 31, CreatedAt: ago(6 * time.Hour),
				EventDate: now.AddDate(0, 0, 3).Format("2006-01-02"), EventTime: "19:00", EventPlace: "Engineering 1500",
			},
			likedBy: []string{"u_wsu_001"},
		},
		{
			post: &shared.Post{
				Id: "p3", Author: authors["u_sarah"], SubforumId: "roommates", TopicId: "t4", TopicName: "Housing",
				Title:       "Roommate needed for Winter semester",
				Body:        "Looking for a roommate to share a 2BR apartment near campus. $650/month including utilities. DM if interested!",
				ContentType: shared.ContentTypeDiscussion, Likes: 5, CreatedAt: ago(24 * time.Hour),
			},
		},
		{
			post: &shared.Post{
				Id: "p4", Author: authors["u_drsmith"], SubforumId: "announcements", TopicId: "t1", TopicName: "Announcements",
				Title:       "Final Exam Schedule Released",
				Body:        "The final exam schedule has been posted. Please check the registrar website for your specific times. Office hours will be extended during finals week.",
				ContentType: shared.ContentTypeAnnouncement, Likes: 45, CreatedAt: ago(4 * time.Hour),
				Comments: []*shared.Comment{
					comment("c2", "u_mike", "Thanks for the heads up!", 30*time.Minute),
				},
			},
			likedBy: []string{"u_wsu_001"},
			savedBy: []string{"u_wsu_001"},
		},
		{
			post: &shared.Post{
				Id: "p5", Author: authors["u_emma"], SubforumId: "study-groups", TopicId: "t6", TopicName: "Study Groups",
				Title:       "Study group for CSC 4500 Algorithms?",
				Body:        "Anyone want to form a study group for the Algorithms final? Planning to meet at the library this weekend.",
				ContentType: shared.ContentTypeQuestion, Likes: 12, CreatedAt: ago(5 * time.Hour),
				Comments: []*shared.Comment{
					comment("c3", "u_alex", "I'm in! DM me the details.", 2*time.Hour),
				},
			},
		},
		{
			post: &shared.Post{
				Id: "p6", Author: authors["u_career"], SubforumId: "internships", TopicId: "t7", TopicName: "Career",
				Title:       "Summer Internship Fair - Register Now!",
				Body:        "Over 50 companies will be attending our annual internship fair. Registration is required. Free professional headshots available!",
				ContentType: shared.ContentTypeEvent, Likes: 89, CreatedAt: ago(24 * time.Hour),
				EventDate: now.AddDate(0, 1, 0).Format("2006-01-02"), EventTime: "10:00", EventPlace: "Student Center Ballroom",
			},
			likedBy: []string{"u_wsu_001"},
			savedBy: []string{"u_wsu_001"},
		},
		{
			post: &shared.Post{
				Id: "p7", Author: authors["u_jason"], SubforumId: "marketplace", TopicId: "t5", TopicName: "Marketplace",
				Title:       "Selling: Calculus textbook (Stewart 9th Ed)",
				Body:        "Barely used, no highlighting. $50 OBO. Can meet on campus.",
				ContentType: shared.ContentTypeDiscussion, Likes: 3, CreatedAt: ago(48 * time.Hour),
			},
		},
	}
}

func seedNotifications(now time.Time) map[string][]*shared.Notification {
	return map[string][]*shared.Notification{
		"u_wsu_001": {
			{Id: "n1", Type: shared.NotificationTypeComment, ActorName: "Jay M.", Message: "replied to a post you saved", PostId: "p1", CreatedAt: now.Add(-time.Hour)},
			{Id: "n2", Type: shared.NotificationTypeSystem, Message: "Welcome to the WSU forum!", CreatedAt: now.Add(-72 * time.Hour), Read: true},
		},
	}
}
