package lib

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	shared "uniforum/shared"
)

type SubforumsRemote interface {
	ListSubforums(ctx context.Context) ([]*shared.SubForum, *shared.ApiError)
	CreateSubforum(ctx context.Context, draft shared.SubforumDraft) (*shared.SubForum, *shared.ApiError)
	Subscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError)
	Unsubscribe(ctx context.Context, id string) (*shared.SubscribeResponse, *shared.ApiError)
}

type SubforumCache struct {
	client SubforumsRemote

	mu        sync.Mutex
	subforums []*shared.SubForum
	err       *shared.ApiError
}

func NewSubforumCache(client SubforumsRemote) *SubforumCache {
	return &SubforumCache{client: client}
}

func cloneSubforum(s *shared.SubForum) *shared.SubForum {
	c := *s
	c.Access = append([]shared.Role(nil), s.Access...)
	c.PostAccess = append([]shared.Role(nil), s.PostAccess...)
	return &c
}

func cloneSubforums(ss []*shared.SubForum) []*shared.SubForum {
	res := make([]*shared.SubForum, len(ss))
	for i, s := range ss {
		res[i] = cloneSubforum(s)
	}
	return res
}

func (c *SubforumCache) Subforums() []*shared.SubForum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSubforums(c.subforums)
}

func (c *SubforumCache) Get(id string) *shared.SubForum {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subforums {
		if s.Id == id {
			return cloneSubforum(s)
		}
	}
	return nil
}

func (c *SubforumCache) Err() *shared.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *SubforumCache) Load(ctx context.Context) ([]*shared.SubForum, *shared.ApiError) {
	subforums, apiErr := c.client.ListSubforums(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if apiErr != nil {
		c.err = apiErr
		return cloneSubforums(c.subforums), apiErr
	}
	c.subforums = []*shared.SubForum{}
	for _, s := range subforums {
		if s != nil {
			c.subforums = append(c.subforums, s)
		}
	}
	c.err = nil
	return cloneSubforums(c.subforums), nil
}

// Create adds a sub-forum once the server accepts it. Unlike posts there is
// no local placeholder.
func (c *SubforumCache) Create(ctx context.Context, draft shared.SubforumDraft) (*shared.SubForum, *shared.ApiError) {
	apiErr := shared.ValidateSubforumDraft(draft)
	if apiErr != nil {
		return nil, apiErr
	}
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Category == "" {
		draft.Category = shared.SubforumCategoryGeneral
	}

	created, apiErr := c.client.CreateSubforum(ctx, draft)
	if apiErr != nil {
		c.mu.Lock()
		c.err = apiErr
		c.mu.Unlock()
		return nil, apiErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subforums = append(c.subforums, created)
	return cloneSubforum(created), nil
}

// ToggleSubscribe flips membership and the member count together, rolling
// back exactly on failure.
func (c *SubforumCache) ToggleSubscribe(ctx context.Context, id string) (*shared.SubForum, *shared.ApiError) {
	c.mu.Lock()
	var sub *shared.SubForum
	for _, s := range c.subforums {
		if s.Id == id {
			sub = s
			break
		}
	}
	if sub == nil {
		c.mu.Unlock()
		return nil, notFound("sub-forum", id)
	}
	prevSubscribed, prevMembers := sub.Subscribed, sub.Members
	sub.Subscribed = !prevSubscribed
	if sub.Subscribed {
		sub.Members++
	} else if sub.Members > 0 {
		sub.Members--
	}
	optimisticSubscribed, optimisticMembers := sub.Subscribed, sub.Members
	c.mu.Unlock()

	var res *shared.SubscribeResponse
	var apiErr *shared.ApiError
	if optimisticSubscribed {
		res, apiErr = c.client.Subscribe(ctx, id)
	} else {
		res, apiErr = c.client.Unsubscribe(ctx, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stillOurs := sub.Subscribed == optimisticSubscribed && sub.Members == optimisticMembers
	if apiErr != nil {
		if stillOurs {
			sub.Subscribed, sub.Members = prevSubscribed, prevMembers
		}
		c.err = apiErr
		log.Printf("Error toggling subscription to %s, rolled back: %v\n", id, apiErr)
		return cloneSubforum(sub), apiErr
	}

	if stillOurs && res != nil {
		if res.Subscribed != nil {
			sub.Subscribed = *res.Subscribed
		}
		if res.Members != nil && *res.Members >= 0 {
			sub.Members = *res.Members
		}
	}
	return cloneSubforum(sub), nil
}

// Accessible returns the sub-forums role may read.
func (c *SubforumCache) Accessible(role shared.Role) []*shared.SubForum {
	res := []*shared.SubForum{}
	for _, s := range c.Subforums() {
		if s.CanAccess(role) {
			res = append(res, s)
		}
	}
	return res
}

func (c *SubforumCache) Subscribed() []*shared.SubForum {
	res := []*shared.SubForum{}
	for _, s := range c.Subforums() {
		if s.Subscribed {
			res = append(res, s)
		}
	}
	return res
}

// ByCategory groups sub-forums, each group sorted by name.
func ByCategory(subforums []*shared.SubForum) map[shared.SubforumCategory][]*shared.SubForum {
	groups := map[shared.SubforumCategory][]*shared.SubForum{}
	for _, s := range subforums {
		category := s.Category
		if category == "" {
			category = shared.SubforumCategoryGeneral
		}
		groups[category] = append(groups[category], s)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return strings.ToLower(group[i].Name) < strings.ToLower(group[j].Name)
		})
	}
	return groups
}

func (c *SubforumCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subforums = nil
	c.err = nil
}
