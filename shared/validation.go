package shared

import (
	"strings"
	"unicode/utf8"
)

const (
	PostTitleMax = 100
	PostBodyMax  = 5000
	CommentMax   = 1000
	BioMax       = 500
	SubforumMax  = 50
)

func ValidatePostDraft(d PostDraft) *ApiError {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > PostTitleMax {
		return NewValidationError("title must be at most %d characters", PostTitleMax)
	}
	if utf8.RuneCountInString(d.Body) > PostBodyMax {
		return NewValidationError("body must be at most %d characters", PostBodyMax)
	}
	if d.ContentType != "" && !IsValidContentType(d.ContentType) {
		return NewValidationError("unknown content type %q", d.ContentType)
	}
	if d.ContentType == ContentTypeEvent && strings.TrimSpace(d.EventDate) == "" {
		return NewValidationError("events need a date")
	}
	return nil
}

func ValidatePostPatch(p PostPatch) *ApiError {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return NewValidationError("title is required")
		}
		if utf8.RuneCountInString(title) > PostTitleMax {
			return NewValidationError("title must be at most %d characters", PostTitleMax)
		}
	}
	if p.Body != nil && utf8.RuneCountInString(*p.Body) > PostBodyMax {
		return NewValidationError("body must be at most %d characters", PostBodyMax)
	}
	if p.ContentType != nil && !IsValidContentType(*p.ContentType) {
		return NewValidationError("unknown content type %q", *p.ContentType)
	}
	return nil
}

func ValidateComment(text string) *ApiError {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewValidationError("comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > CommentMax {
		return NewValidationError("comment must be at most %d characters", CommentMax)
	}
	return nil
}

func ValidateProfileUpdate(u ProfileUpdate) *ApiError {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return NewValidationError("name cannot be empty")
	}
	if u.Bio != nil && utf8.RuneCountInString(*u.Bio) > BioMax {
		return NewValidationError("bio must be at most %d characters", BioMax)
	}
	return nil
}

func ValidateSubforumDraft(d SubforumDraft) *ApiError {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return NewValidationError("name is required")
	}
	if utf8.RuneCountInString(name) > SubforumMax {
		return NewValidationError("name must be at most %d characters", SubforumMax)
	}
	return nil
}
