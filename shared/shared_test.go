package shared

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, ""},
		{now.Add(-30 * time.Second), "Just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-2 * 24 * time.Hour), "2d ago"},
		{time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), "Mar 1"},
		{time.Date(2023, 12, 25, 9, 0, 0, 0, time.UTC), "Dec 25, 2023"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(tt.at, now))
	}
}

func TestTruncateAndInitials(t *testing.T) {
	assert.Equal(t, "hi", Truncate("hi", 5))
	assert.Equal(t, "hello...", Truncate("hello world", 6))

	assert.Equal(t, "JD", Initials("Jean Doe"))
	assert.Equal(t, "A", Initials("ali"))
	assert.Equal(t, "AB", Initials("a b c"))
	assert.Equal(t, "?", Initials("  "))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleStudent, ParseRole("student"))
	assert.Equal(t, RoleFaculty, ParseRole(" FACULTY "))
	assert.Equal(t, Role(""), ParseRole("dean"))

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","role":"staff"}`), &u))
	assert.Equal(t, RoleStaff, u.Role)
}

func TestSubforumAccess(t *testing.T) {
	open := &SubForum{Id: "cs"}
	assert.True(t, open.CanAccess(RoleStudent))
	assert.True(t, open.CanPost(RoleAlumni))

	lounge := &SubForum{Id: "faculty-lounge", Access: []Role{RoleFaculty, RoleStaff, RoleAdmin}}
	assert.False(t, lounge.CanAccess(RoleStudent))
	assert.False(t, lounge.CanPost(RoleStudent))
	assert.True(t, lounge.CanPost(RoleStaff))

	announcements := &SubForum{Id: "announcements", PostAccess: []Role{RoleStaff, RoleAdmin}}
	assert.True(t, announcements.CanAccess(RoleStudent))
	assert.False(t, announcements.CanPost(RoleStudent))
	assert.True(t, announcements.CanPost(RoleAdmin))
}

func TestMergeSettings(t *testing.T) {
	merged := MergeSettings(Settings{SettingDarkMode: true, "betaFeed": true}, Settings{SettingEmailNotifications: false})

	assert.True(t, merged.DarkMode())
	assert.False(t, merged.Get(SettingEmailNotifications))
	assert.True(t, merged.PushNotifications())
	assert.True(t, merged.Get("betaFeed"))
	assert.False(t, merged.Get("unknown"))
	assert.Len(t, merged.Keys(), len(DefaultSettings())+1)
}

func TestValidatePostDraft(t *testing.T) {
	assert.Nil(t, ValidatePostDraft(PostDraft{Title: "Study group", Body: "Thursdays"}))

	apiErr := ValidatePostDraft(PostDraft{Title: "   "})
	require.NotNil(t, apiErr)
	assert.Equal(t, ApiErrorTypeValidation, apiErr.Type)

	assert.NotNil(t, ValidatePostDraft(PostDraft{Title: strings.Repeat("x", PostTitleMax+1)}))
	assert.NotNil(t, ValidatePostDraft(PostDraft{Title: "Hack night", ContentType: ContentTypeEvent}))

	assert.NotNil(t, ValidateComment(" "))
	assert.Nil(t, ValidateComment("nice"))
}

func TestErrorTypeForStatus(t *testing.T) {
	assert.Equal(t, ApiErrorTypeInvalidToken, ErrorTypeForStatus(401))
	assert.Equal(t, ApiErrorTypeForbidden, ErrorTypeForStatus(403))
	assert.Equal(t, ApiErrorTypeNotFound, ErrorTypeForStatus(404))
	assert.Equal(t, ApiErrorTypeValidation, ErrorTypeForStatus(422))
	assert.Equal(t, ApiErrorTypeServer, ErrorTypeForStatus(503))
	assert.Equal(t, ApiErrorTypeOther, ErrorTypeForStatus(409))

	assert.True(t, (&ApiError{Type: ApiErrorTypeInvalidToken}).IsAuth())
	var nilErr *ApiError
	assert.False(t, nilErr.IsAuth())
}

func TestDiffPost(t *testing.T) {
	from := &Post{Title: "Hack night", Body: "Room 101", ContentType: ContentTypeEvent, EventPlace: "Room 101"}
	assert.True(t, DiffPost(from, from.Clone()).IsEmpty())

	to := from.Clone()
	to.Title = "Hack night, moved"
	to.EventPlace = "Room 204"
	patch := DiffPost(from, to)
	require.False(t, patch.IsEmpty())
	assert.Nil(t, patch.Body)
	assert.Nil(t, patch.ContentType)

	patch.ApplyTo(from)
	assert.Equal(t, to, from)

	to.Title = "changed after diffing"
	assert.Equal(t, "Hack night, moved", *patch.Title)
}
