package shared

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "Student"
	RoleFaculty Role = "Faculty"
	RoleStaff   Role = "Staff"
	RoleAlumni  Role = "Alumni"
	RoleAdmin   Role = "Admin"
)

var AllRoles = []Role{RoleStudent, RoleFaculty, RoleStaff, RoleAlumni, RoleAdmin}

// higher = more access
var RoleAccess = map[Role]int{
	RoleStudent: 1,
	RoleAlumni:  2,
	RoleStaff:   3,
	RoleFaculty: 4,
	RoleAdmin:   5,
}

// ParseRole matches case-insensitively against the closed role set. Unknown
// values map to the empty role.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), s) {
			return r
		}
	}
	return ""
}

func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}

type User struct {
	Id             string   `json:"id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           Role     `json:"role"`
	Avatar         string   `json:"avatar,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Major          string   `json:"major,omitempty"`
	Classification string   `json:"classification,omitempty"`
	Department     string   `json:"department,omitempty"`
	EmailVerified  bool     `json:"emailVerified"`
	Settings       Settings `json:"settings,omitempty"`
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func (u *User) AsAuthor() *Author {
	return &Author{Id: u.Id, Name: u.DisplayName(), Avatar: u.Avatar, Role: u.Role}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Settings = u.Settings.Clone()
	return &c
}

type Author struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

type ContentType string

const (
	ContentTypeDiscussion   ContentType = "discussion"
	ContentTypeQuestion     ContentType = "question"
	ContentTypeEvent        ContentType = "event"
	ContentTypeAnnouncement ContentType = "announcement"
	ContentTypePoll         ContentType = "poll"
)

var AllContentTypes = []ContentType{
	ContentTypeDiscussion,
	ContentTypeQuestion,
	ContentTypeEvent,
	ContentTypeAnnouncement,
	ContentTypePoll,
}

func IsValidContentType(t ContentType) bool {
	for _, ct := range AllContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

type Comment struct {
	Id        string    `json:"id"`
	Author    *Author   `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Author != nil {
		a := *c.Author
		clone.Author = &a
	}
	return &clone
}

type Post struct {
	Id          string      `json:"id"`
	Author      *Author     `json:"author"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	ContentType ContentType `json:"contentType"`

	TopicId    string `json:"topicId,omitempty"`
	TopicName  string `json:"topicName,omitempty"`
	SubforumId string `json:"subforumId,omitempty"`

	EventDate  string `json:"eventDate,omitempty"`
	EventTime  string `json:"eventTime,omitempty"`
	EventPlace string `json:"eventPlace,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	Likes        int        `json:"likes"`
	Liked        bool       `json:"liked"`
	Saved        bool       `json:"saved"`
	CommentCount int        `json:"commentCount"`
	Comments     []*Comment `json:"comments"`
}

func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Author != nil {
		a := *p.Author
		clone.Author = &a
	}
	if p.Comments != nil {
		clone.Comments = make([]*Comment, len(p.Comments))
		for i, c := range p.Comments {
			clone.Comments[i] = c.Clone()
		}
	}
	return &clone
}

func (p *Post) AuthorId() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Id
}

type Topic struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Followers   int    `json:"followers"`
	Color       string `json:"color,omitempty"`
	Following   bool   `json:"following"`
}

type SubforumCategory string

const (
	SubforumCategoryAcademics    SubforumCategory = "academics"
	SubforumCategoryCampusLife   SubforumCategory = "campus_life"
	SubforumCategoryCareer       SubforumCategory = "career"
	SubforumCategoryGeneral      SubforumCategory = "general"
	SubforumCategoryStudentOnly  SubforumCategory = "student_only"
	SubforumCategoryFacultyStaff SubforumCategory = "faculty_staff"
)

var SubforumCategoryLabels = map[SubforumCategory]string{
	SubforumCategoryAcademics:    "Academics",
	SubforumCategoryCampusLife:   "Campus Life",
	SubforumCategoryCareer:       "Career",
	SubforumCategoryGeneral:      "General",
	SubforumCategoryStudentOnly:  "Students Only",
	SubforumCategoryFacultyStaff: "Faculty & Staff",
}

type SubForum struct {
	Id          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    SubforumCategory `json:"category"`
	Color       string           `json:"color,omitempty"`
	Access      []Role           `json:"access,omitempty"`
	PostAccess  []Role           `json:"postAccess,omitempty"`
	Members     int              `json:"members"`
	Subscribed  bool             `json:"subscribed"`
}

// CanAccess reports whether role may read the sub-forum. An empty access
// list means everyone.
func (s *SubForum) CanAccess(role Role) bool {
	if len(s.Access) == 0 {
		return true
	}
	return hasRole(s.Access, role)
}

func (s *SubForum) CanPost(role Role) bool {
	if len(s.PostAccess) > 0 {
		return hasRole(s.PostAccess, role)
	}
	return s.CanAccess(role)
}

func hasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeMention NotificationType = "mention"
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeSystem  NotificationType = "system"
)

type Notification struct {
	Id        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	ActorName string           `json:"actorName,omitempty"`
	PostId    string           `json:"postId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

type SearchResults struct {
	People    []*Author   `json:"people"`
	Posts     []*Post     `json:"posts"`
	Subforums []*SubForum `json:"subforums"`
}

func (r *SearchResults) Empty() bool {
	return r == nil || (len(r.People) == 0 && len(r.Posts) == 0 && len(r.Subforums) == 0)
}

type ReportType string

const (
	ReportTypePost    ReportType = "post"
	ReportTypeComment ReportType = "comment"
	ReportTypeUser    ReportType = "user"
)
