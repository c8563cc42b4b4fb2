package core

import (
	"slices"
	"strconv"
)

// nicknamePrefix is used when generating default nicknames.
const nicknamePrefix = "User"

// Client is a connected participant as seen by the model.
type Client struct {
	ID       int64
	Nickname string
}

// clientRegistry tracks registered clients by id with a nickname index.
type clientRegistry struct {
	byID   map[int64]*Client
	byNick map[string]int64
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{
		byID:   make(map[int64]*Client),
		byNick: make(map[string]int64),
	}
}

// add registers id under a freshly generated nickname.
func (r *clientRegistry) add(id int64) *Client {
	c := &Client{ID: id, Nickname: r.generateNickname()}
	r.byID[id] = c
	r.byNick[c.Nickname] = id
	return c
}

// generateNickname returns the first "User<N>" not in use. With n registered
// clients at most n+1 candidates are probed.
func (r *clientRegistry) generateNickname() string {
	for suffix := 0; ; suffix++ {
		nick := nicknamePrefix + strconv.Itoa(suffix)
		if _, taken := r.byNick[nick]; !taken {
			return nick
		}
	}
}

func (r *clientRegistry) remove(id int64) {
	c, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byNick, c.Nickname)
	delete(r.byID, id)
}

func (r *clientRegistry) get(id int64) (*Client, bool) {
	c, ok := r.byID[id]
	return c, ok
}

func (r *clientRegistry) idOf(nickname string) (int64, bool) {
	id, ok := r.byNick[nickname]
	return id, ok
}

func (r *clientRegistry) nicknameOf(id int64) (string, bool) {
	c, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return c.Nickname, true
}

func (r *clientRegistry) rename(id int64, nickname string) {
	c, ok := r.byID[id]
	if !ok || c.Nickname == nickname {
		return
	}
	delete(r.byNick, c.Nickname)
	c.Nickname = nickname
	r.byNick[nickname] = id
}

// ids returns registered ids in ascending order.
func (r *clientRegistry) ids() []int64 {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// nicknames returns a fresh slice of nicknames ordered by client id.
func (r *clientRegistry) nicknames() []string {
	ids := r.ids()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id].Nickname)
	}
	return out
}

func (r *clientRegistry) len() int {
	return len(r.byID)
}
