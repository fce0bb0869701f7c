package shared

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is the login body. The user object is optional: some
// deployments only return the token pair.
type SignInResponse struct {
	Success *bool  `json:"success,omitempty"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

type SignUpRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Pass2          string `json:"pass2"`
	Role           string `json:"role"`
	Name           string `json:"name,omitempty"`
	Major          string `json:"major"`
	Classification string `json:"classification"`
	Department     string `json:"department"`
}

type MessageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Text returns the first non-empty human-readable field.
func (r *MessageResponse) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Detail
}

// Succeeded follows the activation endpoint convention of answering
// "success" in either the message or detail field.
func (r *MessageResponse) Succeeded() bool {
	if r.Success != nil {
		return *r.Success
	}
	return r.Message == "success" || r.Detail == "success"
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ConfirmResetPasswordRequest struct {
	Password string `json:"password"`
	Pass2    string `json:"pass2"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

type RefreshTokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type SignOutRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

// ProfileUpdate holds the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name           *string `json:"name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Major          *string `json:"major,omitempty"`
	Classification *string `json:"classification,omitempty"`
	Department     *string `json:"department,omitempty"`
	Avatar         *string `json:"avatar,omitempty"`
}

func (u ProfileUpdate) ApplyTo(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Bio != nil {
		user.Bio = *u.Bio
	}
	if u.Major != nil {
		user.Major = *u.Major
	}
	if u.Classification != nil {
		user.Classification = *u.Classification
	}
	if u.Department != nil {
		user.Department = *u.Department
	}
	if u.Avatar != nil {
		user.Avatar = *u.Avatar
	}
}

type PostDraft struct {
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	ContentType ContentType `json:"contentType"`
	TopicId     string      `json:"topicId,omitempty"`
	TopicName   string      `json:"topicName,omitempty"`
	SubforumId  string      `json:"subforumId,omitempty"`
	EventDate   string      `json:"eventDate,omitempty"`
	EventTime   string      `json:"eventTime,omitempty"`
	EventPlace  string      `json:"eventPlace,omitempty"`
}

type PostPatch struct {
	Title       *string      `json:"title,omitempty"`
	Body        *string      `json:"body,omitempty"`
	ContentType *ContentType `json:"contentType,omitempty"`
	EventDate   *string      `json:"eventDate,omitempty"`
	EventTime   *string      `json:"eventTime,omitempty"`
	EventPlace  *string      `json:"eventPlace,omitempty"`
}

func (p PostPatch) ApplyTo(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Body != nil {
		post.Body = *p.Body
	}
	if p.ContentType != nil {
		post.ContentType = *p.ContentType
	}
	if p.EventDate != nil {
		post.EventDate = *p.EventDate
	}
	if p.EventTime != nil {
		post.EventTime = *p.EventTime
	}
	if p.EventPlace != nil {
		post.EventPlace = *p.EventPlace
	}
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil && p.ContentType == nil &&
		p.EventDate == nil && p.EventTime == nil && p.EventPlace == nil
}

// DiffPost returns the patch that turns from's editable fields into to's.
func DiffPost(from, to *Post) PostPatch {
	var p PostPatch
	if to.Title != from.Title {
		v := to.Title
		p.Title = &v
	}
	if to.Body != from.Body {
		v := to.Body
		p.Body = &v
	}
	if to.ContentType != from.ContentType {
		v := to.ContentType
		p.ContentType = &v
	}
	if to.EventDate != from.EventDate {
		v := to.EventDate
		p.EventDate = &v
	}
	if to.EventTime != from.EventTime {
		v := to.EventTime
		p.EventTime = &v
	}
	if to.EventPlace != from.EventPlace {
		v := to.EventPlace
		p.EventPlace = &v
	}
	return p
}

// ToggleLikeResponse carries the server's authoritative like state. Either
// field may be absent.
type ToggleLikeResponse struct {
	Liked *bool `json:"liked,omitempty"`
	Likes *int  `json:"likes,omitempty"`
}

type ToggleSaveResponse struct {
	Saved *bool `json:"saved,omitempty"`
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

type FollowResponse struct {
	Followed  *bool `json:"followed,omitempty"`
	Followers *int  `json:"followers,omitempty"`
}

type SubscribeResponse struct {
	Subscribed *bool `json:"subscribed,omitempty"`
	Members    *int  `json:"members,omitempty"`
}

type SubforumDraft struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    SubforumCategory `json:"category"`
	Color       string           `json:"color,omitempty"`
}

type SearchRequest struct {
	SearchText string `json:"searchText"`
}

type ReportRequest struct {
	Type     ReportType `json:"type"`
	TargetId string     `json:"targetId"`
	Reason   string     `json:"reason"`
}

type ReportResponse struct {
	Success  bool   `json:"success"`
	ReportId string `json:"reportId"`
}
