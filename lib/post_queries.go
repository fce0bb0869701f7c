package lib

import (
	"sort"
	"time"

	shared "uniforum/shared"
)

func filterPosts(posts []*shared.Post, keep func(p *shared.Post) bool) []*shared.Post {
	res := []*shared.Post{}
	for _, p := range posts {
		if keep(p) {
			res = append(res, p)
		}
	}
	return res
}

func SavedPosts(posts []*shared.Post) []*shared.Post {
	return filterPosts(posts, func(p *shared.Post) bool { return p.Saved })
}

func PostsByTopic(posts []*shared.Post, topicId string) []*shared.Post {
	return filterPosts(posts, func(p *shared.Post) bool { return p.TopicId == topicId })
}

func PostsBySubforum(posts []*shared.Post, subforumId string) []*shared.Post {
	return filterPosts(posts, func(p *shared.Post) bool { return p.SubforumId == subforumId })
}

func PostsByAuthor(posts []*shared.Post, authorId string) []*shared.Post {
	if authorId == "" {
		return []*shared.Post{}
	}
	return filterPosts(posts, func(p *shared.Post) bool { return p.AuthorId() == authorId })
}

const eventDateFormat = "2006-01-02"

// UpcomingEvents returns event posts dated today or later, soonest first.
// Posts whose date does not parse are skipped.
func UpcomingEvents(posts []*shared.Post, now time.Time) []*shared.Post {
	today := now.Format(eventDateFormat)

	events := filterPosts(posts, func(p *shared.Post) bool {
		if p.ContentType != shared.ContentTypeEvent || p.EventDate == "" {
			return false
		}
		if _, err := time.Parse(eventDateFormat, p.EventDate); err != nil {
			return false
		}
		return p.EventDate >= today
	})

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].EventDate != events[j].EventDate {
			return events[i].EventDate < events[j].EventDate
		}
		return events[i].EventTime < events[j].EventTime
	})
	return events
}

// CanModifyPost reports whether user may edit or delete post.
func CanModifyPost(user *shared.User, post *shared.Post) bool {
	if user == nil || post == nil {
		return false
	}
	return user.Id != "" && post.AuthorId() == user.Id
}

// CanDeleteComment decides whether to offer deletion: the comment's author
// and the post's owner both may. The server has the final word.
func CanDeleteComment(user *shared.User, post *shared.Post, comment *shared.Comment) bool {
	if user == nil || user.Id == "" || post == nil || comment == nil {
		return false
	}
	if comment.Author != nil && comment.Author.Id == user.Id {
		return true
	}
	return post.AuthorId() == user.Id
}

func (c *PostCache) Saved() []*shared.Post {
	return SavedPosts(c.Posts())
}

func (c *PostCache) ByTopic(topicId string) []*shared.Post {
	return PostsByTopic(c.Posts(), topicId)
}

func (c *PostCache) BySubforum(subforumId string) []*shared.Post {
	return PostsBySubforum(c.Posts(), subforumId)
}

func (c *PostCache) ByAuthor(authorId string) []*shared.Post {
	return PostsByAuthor(c.Posts(), authorId)
}

// Mine returns the signed-in user's posts.
func (c *PostCache) Mine() []*shared.Post {
	user := c.session.Current()
	if user == nil {
		return []*shared.Post{}
	}
	return c.ByAuthor(user.Id)
}

func (c *PostCache) UpcomingEvents() []*shared.Post {
	return UpcomingEvents(c.Posts(), c.now())
}
