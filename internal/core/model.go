package core

import (
	"fmt"
	"slices"
	"sync"
)

// Model owns the client and channel registries. Every exported method holds
// one exclusive lock for its whole duration, so no caller can observe a
// partially applied operation.
type Model struct {
	mu       sync.Mutex
	clients  *clientRegistry
	channels *channelRegistry
}

// ChannelInfo is a read-only snapshot of a channel.
type ChannelInfo struct {
	ID      int64
	Name    string
	Owner   string
	Private bool
	Members []string
}

// Stats counts live entities.
type Stats struct {
	Clients  int
	Channels int
}

// NewModel constructs an empty model.
func NewModel() *Model {
	return &Model{
		clients:  newClientRegistry(),
		channels: newChannelRegistry(),
	}
}

// Connect registers a new connection under a generated nickname.
func (m *Model) Connect(id int64) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients.get(id); exists {
		return Broadcast{}, fmt.Errorf("connect client %d: %w", id, ErrClientExists)
	}
	return connectedBroadcast(m.clients.add(id)), nil
}

// Disconnect removes a client, deletes every channel it owns and drops it
// from every other channel. Former channel mates are the recipients.
func (m *Model) Disconnect(id int64) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients.get(id)
	if !ok {
		return Broadcast{}, fmt.Errorf("disconnect client %d: %w", id, ErrUnknownClient)
	}

	mates := m.matesOf(id, false)
	for _, ch := range m.channels.all() {
		if ch.IsOwner(id) {
			m.channels.delete(ch.ID)
			continue
		}
		ch.RemoveMember(id)
		ch.RevokeInvite(id)
	}

	nickname := c.Nickname
	m.clients.remove(id)
	return disconnectedBroadcast(nickname, mates), nil
}

// Handle dispatches cmd to the operation matching its kind.
func (m *Model) Handle(cmd Command) (Broadcast, error) {
	switch cmd.Kind {
	case CommandNickname:
		return m.Rename(cmd)
	case CommandCreate:
		return m.CreateChannel(cmd)
	case CommandJoin:
		return m.Join(cmd)
	case CommandInvite:
		return m.Invite(cmd)
	case CommandKick:
		return m.Kick(cmd)
	case CommandLeave:
		return m.Leave(cmd)
	case CommandMessage:
		return m.SendMessage(cmd)
	default:
		return Broadcast{}, fmt.Errorf("handle kind %d: %w", cmd.Kind, ErrUnknownCommand)
	}
}

// Rename changes the sender's nickname. Everyone sharing a channel with the
// sender hears about it, the sender included.
func (m *Model) Rename(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	if !IsValidName(cmd.Nickname) {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeInvalidName), nil
	}
	if owner, taken := m.clients.idOf(cmd.Nickname); taken && owner != sender.ID {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNameAlreadyInUse), nil
	}

	old := sender.Nickname
	m.clients.rename(sender.ID, cmd.Nickname)
	return okayBroadcast(cmd, old, m.matesOf(sender.ID, true)), nil
}

// CreateChannel makes the sender the owner and only member of a new channel.
func (m *Model) CreateChannel(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	if _, code := m.channels.create(cmd.Channel, sender.ID, cmd.Private); code != "" {
		return errorBroadcast(cmd, sender.Nickname, code), nil
	}
	return okayBroadcast(cmd, sender.Nickname, m.recipients([]int64{sender.ID})), nil
}

// Join adds the sender to a channel. Private channels require an invite.
// Joining a channel the sender already belongs to changes nothing.
func (m *Model) Join(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	ch, ok := m.channels.get(cmd.Channel)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchChannel), nil
	}
	if !ch.HasMember(sender.ID) {
		if !ch.CanJoin(sender.ID) {
			return errorBroadcast(cmd, sender.Nickname, ErrCodeJoinPrivateChannel), nil
		}
		ch.AddMember(sender.ID)
	}
	return m.names(cmd, sender.Nickname, ch), nil
}

// SendMessage delivers a message to every member of a channel.
func (m *Model) SendMessage(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	ch, ok := m.channels.get(cmd.Channel)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchChannel), nil
	}
	if !ch.HasMember(sender.ID) {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeUserNotInChannel), nil
	}
	return okayBroadcast(cmd, sender.Nickname, m.recipients(ch.MemberIDs())), nil
}

// Leave removes the sender from a channel. When the owner leaves the channel
// is deleted even if other members remain.
func (m *Model) Leave(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	ch, ok := m.channels.get(cmd.Channel)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchChannel), nil
	}
	if !ch.HasMember(sender.ID) {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeUserNotInChannel), nil
	}

	to := m.recipients(ch.MemberIDs())
	m.removeFromChannel(ch, sender.ID)
	return okayBroadcast(cmd, sender.Nickname, to), nil
}

// Invite lets the owner of a private channel add another user to it.
func (m *Model) Invite(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	target, ok := m.clients.idOf(cmd.Target)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchUser), nil
	}
	ch, ok := m.channels.get(cmd.Channel)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchChannel), nil
	}
	if !ch.Private {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeInviteToPublicChannel), nil
	}
	if !ch.IsOwner(sender.ID) {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeUserNotOwner), nil
	}

	ch.Invite(target)
	ch.AddMember(target)
	return m.names(cmd, sender.Nickname, ch), nil
}

// Kick lets the owner remove a member. Kicking oneself is the same as the
// owner leaving: the channel is deleted.
func (m *Model) Kick(cmd Command) (Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, err := m.sender(cmd)
	if err != nil {
		return Broadcast{}, err
	}
	target, ok := m.clients.idOf(cmd.Target)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchUser), nil
	}
	ch, ok := m.channels.get(cmd.Channel)
	if !ok {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeNoSuchChannel), nil
	}
	if !ch.HasMember(target) {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeUserNotInChannel), nil
	}
	if !ch.IsOwner(sender.ID) {
		return errorBroadcast(cmd, sender.Nickname, ErrCodeUserNotOwner), nil
	}

	to := m.recipients(ch.MemberIDs())
	m.removeFromChannel(ch, target)
	ch.RevokeInvite(target)
	return okayBroadcast(cmd, sender.Nickname, to), nil
}

// RegisteredUsers returns every registered nickname ordered by client id.
func (m *Model) RegisteredUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients.nicknames()
}

// Channels returns every channel name ordered by creation.
func (m *Model) Channels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels.names()
}

// UsersInChannel returns member nicknames, or an empty slice when the
// channel does not exist.
func (m *Model) UsersInChannel(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels.get(name)
	if !ok {
		return []string{}
	}
	return m.recipients(ch.MemberIDs()).nicknames
}

// Owner returns the nickname owning the channel.
func (m *Model) Owner(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels.get(name)
	if !ok {
		return "", false
	}
	return m.clients.nicknameOf(ch.OwnerID)
}

// UserID returns the id registered under nickname.
func (m *Model) UserID(nickname string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients.idOf(nickname)
}

// Nickname returns the nickname of a registered client id.
func (m *Model) Nickname(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients.nicknameOf(id)
}

// ChannelInfo returns a snapshot of one channel.
func (m *Model) ChannelInfo(name string) (ChannelInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels.get(name)
	if !ok {
		return ChannelInfo{}, false
	}
	return m.info(ch), true
}

// ListChannels returns snapshots of all channels ordered by creation.
func (m *Model) ListChannels() []ChannelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	chans := m.channels.all()
	out := make([]ChannelInfo, 0, len(chans))
	for _, ch := range chans {
		out = append(out, m.info(ch))
	}
	return out
}

// Stats returns current entity counts.
func (m *Model) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Clients: m.clients.len(), Channels: m.channels.len()}
}

func (m *Model) sender(cmd Command) (*Client, error) {
	c, ok := m.clients.get(cmd.SenderID)
	if !ok {
		return nil, fmt.Errorf("%s from client %d: %w", cmd.Kind, cmd.SenderID, ErrUnknownClient)
	}
	return c, nil
}

// removeFromChannel drops id from ch, deleting ch when id is its owner. Any
// invite for id is left in place.
func (m *Model) removeFromChannel(ch *Channel, id int64) {
	if ch.IsOwner(id) {
		m.channels.delete(ch.ID)
		return
	}
	ch.RemoveMember(id)
}

// matesOf collects every client sharing at least one channel with id.
func (m *Model) matesOf(id int64, includeSelf bool) recipientSet {
	seen := make(map[int64]struct{})
	for _, ch := range m.channels.all() {
		if !ch.HasMember(id) {
			continue
		}
		for _, member := range ch.MemberIDs() {
			seen[member] = struct{}{}
		}
	}
	if includeSelf {
		seen[id] = struct{}{}
	} else {
		delete(seen, id)
	}

	ids := make([]int64, 0, len(seen))
	for member := range seen {
		ids = append(ids, member)
	}
	return m.recipients(ids)
}

// recipients resolves ids to nicknames, sorted and deduplicated by id.
func (m *Model) recipients(ids []int64) recipientSet {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	set := recipientSet{
		ids:       make([]int64, 0, len(ids)),
		nicknames: make([]string, 0, len(ids)),
	}
	for _, id := range ids {
		nick, ok := m.clients.nicknameOf(id)
		if !ok {
			continue
		}
		set.ids = append(set.ids, id)
		set.nicknames = append(set.nicknames, nick)
	}
	return set
}

func (m *Model) names(cmd Command, sender string, ch *Channel) Broadcast {
	owner, _ := m.clients.nicknameOf(ch.OwnerID)
	return namesBroadcast(cmd, sender, m.recipients(ch.MemberIDs()), ch.Name, owner)
}

func (m *Model) info(ch *Channel) ChannelInfo {
	owner, _ := m.clients.nicknameOf(ch.OwnerID)
	return ChannelInfo{
		ID:      ch.ID,
		Name:    ch.Name,
		Owner:   owner,
		Private: ch.Private,
		Members: m.recipients(ch.MemberIDs()).nicknames,
	}
}
