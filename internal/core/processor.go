package core

import (
	"errors"
	"sort"
	"sync"
)

// Processor applies commands to the user and channel registries. Every command
// runs to completion under a single lock, so no caller ever sees a partial
// transition. Preconditions are checked in a fixed order and nothing is mutated
// until all of them hold.
type Processor struct {
	mu       sync.Mutex
	users    *UserRegistry
	channels *ChannelRegistry
}

// ChannelInfo is a read-only snapshot of one channel.
type ChannelInfo struct {
	Name    string
	Owner   string
	Private bool
	Members []string
}

// NewProcessor constructs a processor with empty registries.
func NewProcessor() *Processor {
	return &Processor{
		users:    NewUserRegistry(),
		channels: NewChannelRegistry(),
	}
}

// Process validates and applies cmd, returning the event to deliver.
func (p *Processor) Process(cmd Command) *Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cmd.Kind == CommandConnect {
		return p.connect(cmd)
	}

	// A command may race with the Disconnect of its own sender.
	sender, ok := p.users.LookupNickname(cmd.User)
	if !ok {
		return failure(cmd, ErrCodeNoSuchUser)
	}
	cmd.Sender = sender

	switch cmd.Kind {
	case CommandDisconnect:
		return p.disconnect(cmd)
	case CommandNick:
		return p.rename(cmd)
	case CommandCreate:
		return p.create(cmd)
	case CommandJoin:
		return p.join(cmd)
	case CommandInvite:
		return p.invite(cmd)
	case CommandMessage:
		return p.message(cmd)
	case CommandLeave:
		return p.leave(cmd)
	case CommandKick:
		return p.kick(cmd)
	default:
		return failure(cmd, ErrCodeUnknown)
	}
}

func (p *Processor) connect(cmd Command) *Event {
	nick, ok := p.users.LookupNickname(cmd.User)
	if !ok {
		nick = p.users.Register(cmd.User)
	}
	cmd.Sender = nick
	return &Event{
		Kind:       EventConnected,
		Command:    cmd,
		Nickname:   nick,
		Recipients: []string{nick},
	}
}

func (p *Processor) disconnect(cmd Command) *Event {
	left := make([]string, 0)
	var closed []string
	peers := make(map[string]struct{})

	for _, ch := range p.channels.MemberOf(cmd.User) {
		left = append(left, ch.Name())
		for _, id := range ch.Members() {
			if id == cmd.User {
				continue
			}
			if nick, ok := p.users.LookupNickname(id); ok {
				peers[nick] = struct{}{}
			}
		}
		if ch.IsOwner(cmd.User) {
			p.channels.Remove(ch.Name())
			closed = append(closed, ch.Name())
		} else {
			ch.RemoveMember(cmd.User)
		}
	}
	p.users.Deregister(cmd.User)

	return &Event{
		Kind:       EventDisconnected,
		Command:    cmd,
		Nickname:   cmd.Sender,
		Channels:   left,
		Closed:     closed,
		Recipients: sortedKeys(peers),
	}
}

func (p *Processor) rename(cmd Command) *Event {
	if !ValidName(cmd.Nickname) {
		return failure(cmd, ErrCodeInvalidName)
	}
	if holder, taken := p.users.LookupID(cmd.Nickname); taken && holder != cmd.User {
		return failure(cmd, ErrCodeNameInUse)
	}
	if err := p.users.Rename(cmd.User, cmd.Nickname); err != nil {
		if errors.Is(err, ErrNameInUse) {
			return failure(cmd, ErrCodeNameInUse)
		}
		return failure(cmd, ErrCodeNoSuchUser)
	}
	return okay(cmd, p.peersOf(cmd.User))
}

func (p *Processor) create(cmd Command) *Event {
	if !ValidName(cmd.Channel) {
		return failure(cmd, ErrCodeInvalidName)
	}
	if _, err := p.channels.Create(cmd.Channel, cmd.User, cmd.Private); err != nil {
		return failure(cmd, ErrCodeChannelExists)
	}
	return okay(cmd, []string{cmd.Sender})
}

func (p *Processor) join(cmd Command) *Event {
	ch, ok := p.channels.Find(cmd.Channel)
	if !ok {
		return failure(cmd, ErrCodeNoSuchChannel)
	}
	if ch.IsPrivate() {
		return failure(cmd, ErrCodeJoinPrivateChannel)
	}
	ch.AddMember(cmd.User)
	return p.names(cmd, ch)
}

func (p *Processor) invite(cmd Command) *Event {
	ch, ok := p.channels.Find(cmd.Channel)
	if !ok {
		return failure(cmd, ErrCodeNoSuchChannel)
	}
	target, ok := p.users.LookupID(cmd.Nickname)
	if !ok {
		return failure(cmd, ErrCodeNoSuchUser)
	}
	if !ch.IsOwner(cmd.User) {
		return failure(cmd, ErrCodeNotOwner)
	}
	if !ch.IsPrivate() {
		return failure(cmd, ErrCodeInviteToPublicChannel)
	}
	ch.AddMember(target)
	return p.names(cmd, ch)
}

func (p *Processor) message(cmd Command) *Event {
	ch, ok := p.channels.Find(cmd.Channel)
	if !ok {
		return failure(cmd, ErrCodeNoSuchChannel)
	}
	if !ch.HasMember(cmd.User) {
		return failure(cmd, ErrCodeNotInChannel)
	}
	return okay(cmd, p.nicknames(ch.Members()))
}

func (p *Processor) leave(cmd Command) *Event {
	ch, ok := p.channels.Find(cmd.Channel)
	if !ok {
		return failure(cmd, ErrCodeNoSuchChannel)
	}
	if !ch.HasMember(cmd.User) {
		return failure(cmd, ErrCodeNotInChannel)
	}
	return p.removeFrom(cmd, ch, cmd.User)
}

func (p *Processor) kick(cmd Command) *Event {
	ch, ok := p.channels.Find(cmd.Channel)
	if !ok {
		return failure(cmd, ErrCodeNoSuchChannel)
	}
	target, ok := p.users.LookupID(cmd.Nickname)
	if !ok {
		return failure(cmd, ErrCodeNoSuchUser)
	}
	if !ch.IsOwner(cmd.User) {
		return failure(cmd, ErrCodeNotOwner)
	}
	if !ch.HasMember(target) {
		return failure(cmd, ErrCodeNotInChannel)
	}
	return p.removeFrom(cmd, ch, target)
}

// removeFrom takes id out of ch, dropping the whole channel when id owns it.
// The membership as it was before the removal is notified.
func (p *Processor) removeFrom(cmd Command, ch *Channel, id UserID) *Event {
	ev := okay(cmd, p.nicknames(ch.Members()))
	if ch.IsOwner(id) {
		p.channels.Remove(ch.Name())
		ev.Closed = []string{ch.Name()}
	} else {
		ch.RemoveMember(id)
	}
	return ev
}

func (p *Processor) names(cmd Command, ch *Channel) *Event {
	members := p.nicknames(ch.Members())
	owner, _ := p.users.LookupNickname(ch.Owner())
	return &Event{
		Kind:       EventNames,
		Command:    cmd,
		Recipients: append([]string(nil), members...),
		Members:    members,
		Owner:      owner,
	}
}

// peersOf returns id's own nickname plus everyone sharing a channel with id.
func (p *Processor) peersOf(id UserID) []string {
	set := make(map[string]struct{})
	if nick, ok := p.users.LookupNickname(id); ok {
		set[nick] = struct{}{}
	}
	for _, ch := range p.channels.MemberOf(id) {
		for _, member := range ch.Members() {
			if nick, ok := p.users.LookupNickname(member); ok {
				set[nick] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func (p *Processor) nicknames(ids []UserID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if nick, ok := p.users.LookupNickname(id); ok {
			out = append(out, nick)
		}
	}
	sort.Strings(out)
	return out
}

func (p *Processor) info(ch *Channel) ChannelInfo {
	owner, _ := p.users.LookupNickname(ch.Owner())
	return ChannelInfo{
		Name:    ch.Name(),
		Owner:   owner,
		Private: ch.IsPrivate(),
		Members: p.nicknames(ch.Members()),
	}
}

func okay(cmd Command, recipients []string) *Event {
	return &Event{Kind: EventOkay, Command: cmd, Recipients: recipients}
}

func failure(cmd Command, code string) *Event {
	ev := &Event{Kind: EventError, Command: cmd, Error: errorFor(code)}
	if cmd.Sender != "" {
		ev.Recipients = []string{cmd.Sender}
	}
	return ev
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ==== Queries ====

// Nickname returns the nickname registered for id.
func (p *Processor) Nickname(id UserID) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.users.LookupNickname(id)
}

// UserID returns the identifier holding nickname.
func (p *Processor) UserID(nickname string) (UserID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.users.LookupID(nickname)
}

// Nicknames returns every registered nickname, sorted.
func (p *Processor) Nicknames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.users.Nicknames()
}

// ChannelNames returns every channel name, sorted.
func (p *Processor) ChannelNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels.Names()
}

// Members returns the sorted member nicknames of a channel.
func (p *Processor) Members(channel string) ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels.Find(channel)
	if !ok {
		return nil, false
	}
	return p.nicknames(ch.Members()), true
}

// Owner returns the owner nickname of a channel.
func (p *Processor) Owner(channel string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels.Find(channel)
	if !ok {
		return "", false
	}
	return p.users.LookupNickname(ch.Owner())
}

// Channel returns a snapshot of one channel.
func (p *Processor) Channel(name string) (ChannelInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels.Find(name)
	if !ok {
		return ChannelInfo{}, false
	}
	return p.info(ch), true
}

// Channels returns snapshots of all channels ordered by name.
func (p *Processor) Channels() []ChannelInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ChannelInfo, 0, p.channels.Len())
	for _, name := range p.channels.Names() {
		ch, _ := p.channels.Find(name)
		out = append(out, p.info(ch))
	}
	return out
}
