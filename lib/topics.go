package lib

import (
	"context"
	"log"
	"sync"

	shared "uniforum/shared"
)

type TopicsRemote interface {
	ListTopics(ctx context.Context) ([]*shared.Topic, *shared.ApiError)
	FollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError)
	UnfollowTopic(ctx context.Context, id string) (*shared.FollowResponse, *shared.ApiError)
}

type TopicCache struct {
	client TopicsRemote

	mu     sync.Mutex
	topics []*shared.Topic
	err    *shared.ApiError
}

func NewTopicCache(client TopicsRemote) *TopicCache {
	return &TopicCache{client: client}
}

func cloneTopics(ts []*shared.Topic) []*shared.Topic {
	res := make([]*shared.Topic, len(ts))
	for i, t := range ts {
		c := *t
		res[i] = &c
	}
	return res
}

func (c *TopicCache) Topics() []*shared.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTopics(c.topics)
}

func (c *TopicCache) Following() []*shared.Topic {
	res := []*shared.Topic{}
	for _, t := range c.Topics() {
		if t.Following {
			res = append(res, t)
		}
	}
	return res
}

func (c *TopicCache) Err() *shared.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *TopicCache) Load(ctx context.Context) ([]*shared.Topic, *shared.ApiError) {
	topics, apiErr := c.client.ListTopics(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if apiErr != nil {
		c.err = apiErr
		return cloneTopics(c.topics), apiErr
	}
	c.topics = []*shared.Topic{}
	for _, t := range topics {
		if t != nil {
			c.topics = append(c.topics, t)
		}
	}
	c.err = nil
	return cloneTopics(c.topics), nil
}

// ToggleFollow flips the follow flag and follower count together, rolling
// back exactly on failure.
func (c *TopicCache) ToggleFollow(ctx context.Context, id string) (*shared.Topic, *shared.ApiError) {
	c.mu.Lock()
	var topic *shared.Topic
	for _, t := range c.topics {
		if t.Id == id {
			topic = t
			break
		}
	}
	if topic == nil {
		c.mu.Unlock()
		return nil, notFound("topic", id)
	}
	prevFollowing, prevFollowers := topic.Following, topic.Followers
	topic.Following = !prevFollowing
	if topic.Following {
		topic.Followers++
	} else if topic.Followers > 0 {
		topic.Followers--
	}
	optimistic := *topic
	c.mu.Unlock()

	var res *shared.FollowResponse
	var apiErr *shared.ApiError
	if optimistic.Following {
		res, apiErr = c.client.FollowTopic(ctx, id)
	} else {
		res, apiErr = c.client.UnfollowTopic(ctx, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stillOurs := topic.Following == optimistic.Following && topic.Followers == optimistic.Followers
	if apiErr != nil {
		if stillOurs {
			topic.Following, topic.Followers = prevFollowing, prevFollowers
		}
		c.err = apiErr
		log.Printf("Error toggling follow on topic %s, rolled back: %v\n", id, apiErr)
		result := *topic
		return &result, apiErr
	}

	if stillOurs && res != nil {
		if res.Followed != nil {
			topic.Following = *res.Followed
		}
		if res.Followers != nil && *res.Followers >= 0 {
			topic.Followers = *res.Followers
		}
	}
	result := *topic
	return &result, nil
}

func (c *TopicCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = nil
	c.err = nil
}
