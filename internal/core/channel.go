package core

import "sort"

// Channel is a named group with a fixed owner and privacy flag.
type Channel struct {
	name    string
	owner   UserID
	private bool
	members map[UserID]struct{}
}

// NewChannel constructs a channel whose only member is its owner.
func NewChannel(name string, owner UserID, private bool) *Channel {
	return &Channel{
		name:    name,
		owner:   owner,
		private: private,
		members: map[UserID]struct{}{owner: {}},
	}
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Owner returns the identifier of the channel owner.
func (c *Channel) Owner() UserID { return c.owner }

// IsOwner reports whether id owns the channel.
func (c *Channel) IsOwner(id UserID) bool { return c.owner == id }

// IsPrivate reports whether the channel is invite-only.
func (c *Channel) IsPrivate() bool { return c.private }

// AddMember inserts id into the channel. Returns true if newly added.
func (c *Channel) AddMember(id UserID) bool {
	if _, exists := c.members[id]; exists {
		return false
	}
	c.members[id] = struct{}{}
	return true
}

// RemoveMember deletes id from the channel. Returns true if removed.
// Removing the owner is the registry's job, see ChannelRegistry.Remove.
func (c *Channel) RemoveMember(id UserID) bool {
	if _, exists := c.members[id]; !exists {
		return false
	}
	delete(c.members, id)
	return true
}

// HasMember reports whether id belongs to the channel.
func (c *Channel) HasMember(id UserID) bool {
	_, ok := c.members[id]
	return ok
}

// Members returns a sorted snapshot of member identifiers.
func (c *Channel) Members() []UserID {
	out := make([]UserID, 0, len(c.members))
	for id := range c.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the member count.
func (c *Channel) Len() int {
	return len(c.members)
}

// ChannelRegistry owns the set of existing channels.
type ChannelRegistry struct {
	channels map[string]*Channel
}

// NewChannelRegistry constructs an empty registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]*Channel)}
}

// Create adds a channel owned by owner, failing with ErrChannelExists on a name clash.
func (r *ChannelRegistry) Create(name string, owner UserID, private bool) (*Channel, error) {
	if _, exists := r.channels[name]; exists {
		return nil, ErrChannelExists
	}
	ch := NewChannel(name, owner, private)
	r.channels[name] = ch
	return ch, nil
}

// Find returns the channel called name.
func (r *ChannelRegistry) Find(name string) (*Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}

// Remove deletes the channel called name together with its membership.
func (r *ChannelRegistry) Remove(name string) {
	delete(r.channels, name)
}

// Names returns the sorted names of all channels.
func (r *ChannelRegistry) Names() []string {
	out := make([]string, 0, len(r.channels))
	for name := range r.channels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MemberOf returns the channels id belongs to, ordered by name.
func (r *ChannelRegistry) MemberOf(id UserID) []*Channel {
	var out []*Channel
	for _, ch := range r.channels {
		if ch.HasMember(id) {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Len returns the number of channels.
func (r *ChannelRegistry) Len() int {
	return len(r.channels)
}
