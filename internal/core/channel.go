package core

import (
	"cmp"
	"slices"
)

// Channel is a named, owned group of clients. Members and invites are kept
// as client ids so a disconnect never leaves a dangling reference.
type Channel struct {
	ID      int64
	Name    string
	OwnerID int64
	Private bool

	members map[int64]struct{}
	invited map[int64]struct{}
}

// newChannel constructs a channel whose only member is its owner.
func newChannel(id int64, name string, ownerID int64, private bool) *Channel {
	return &Channel{
		ID:      id,
		Name:    name,
		OwnerID: ownerID,
		Private: private,
		members: map[int64]struct{}{ownerID: {}},
		invited: make(map[int64]struct{}),
	}
}

// AddMember inserts a client into the channel. Returns true if newly added.
func (c *Channel) AddMember(id int64) bool {
	if _, exists := c.members[id]; exists {
		return false
	}
	c.members[id] = struct{}{}
	return true
}

// RemoveMember deletes a client from the channel. Returns true if removed.
func (c *Channel) RemoveMember(id int64) bool {
	if _, exists := c.members[id]; !exists {
		return false
	}
	delete(c.members, id)
	return true
}

// HasMember reports whether id belongs to the channel.
func (c *Channel) HasMember(id int64) bool {
	_, ok := c.members[id]
	return ok
}

// IsOwner reports whether id owns the channel.
func (c *Channel) IsOwner(id int64) bool {
	return c.OwnerID == id
}

// Invite records id as allowed to join a private channel.
func (c *Channel) Invite(id int64) {
	c.invited[id] = struct{}{}
}

// RevokeInvite forgets a previous invite.
func (c *Channel) RevokeInvite(id int64) {
	delete(c.invited, id)
}

// CanJoin reports whether id may join without an invite being issued now.
func (c *Channel) CanJoin(id int64) bool {
	if !c.Private || c.IsOwner(id) {
		return true
	}
	_, ok := c.invited[id]
	return ok
}

// MemberIDs returns member ids in ascending order.
func (c *Channel) MemberIDs() []int64 {
	ids := make([]int64, 0, len(c.members))
	for id := range c.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// channelRegistry indexes live channels by name and id.
type channelRegistry struct {
	nextID int64
	byName map[string]*Channel
	byID   map[int64]*Channel
}

func newChannelRegistry() *channelRegistry {
	return &channelRegistry{
		byName: make(map[string]*Channel),
		byID:   make(map[int64]*Channel),
	}
}

func (r *channelRegistry) get(name string) (*Channel, bool) {
	ch, ok := r.byName[name]
	return ch, ok
}

// create registers a new channel. It fails with ErrCodeInvalidName or
// ErrCodeChannelAlreadyExists.
func (r *channelRegistry) create(name string, ownerID int64, private bool) (*Channel, ErrorCode) {
	if !IsValidName(name) {
		return nil, ErrCodeInvalidName
	}
	if _, taken := r.byName[name]; taken {
		return nil, ErrCodeChannelAlreadyExists
	}
	r.nextID++
	ch := newChannel(r.nextID, name, ownerID, private)
	r.byName[name] = ch
	r.byID[ch.ID] = ch
	return ch, ""
}

func (r *channelRegistry) delete(id int64) {
	ch, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byName, ch.Name)
	delete(r.byID, id)
}

// all returns live channels in ascending id order.
func (r *channelRegistry) all() []*Channel {
	out := make([]*Channel, 0, len(r.byID))
	for _, ch := range r.byID {
		out = append(out, ch)
	}
	slices.SortFunc(out, func(a, b *Channel) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (r *channelRegistry) names() []string {
	chans := r.all()
	out := make([]string, 0, len(chans))
	for _, ch := range chans {
		out = append(out, ch.Name)
	}
	return out
}

func (r *channelRegistry) len() int {
	return len(r.byID)
}
