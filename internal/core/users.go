package core

import (
	"sort"
	"strconv"
)

// UserID identifies a live connection. The transport assigns it and may reuse it
// once the connection is gone.
type UserID int64

const defaultNickPrefix = "User"

// UserRegistry maps connection identifiers to unique nicknames.
// It is not safe for concurrent use; the Processor serialises access.
type UserRegistry struct {
	byID   map[UserID]string
	byNick map[string]UserID
}

// NewUserRegistry constructs an empty registry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		byID:   make(map[UserID]string),
		byNick: make(map[string]UserID),
	}
}

// Register assigns id the smallest free User<N> nickname and returns it.
func (r *UserRegistry) Register(id UserID) string {
	nick := r.nextDefaultNickname()
	r.byID[id] = nick
	r.byNick[nick] = id
	return nick
}

func (r *UserRegistry) nextDefaultNickname() string {
	for n := 0; ; n++ {
		nick := defaultNickPrefix + strconv.Itoa(n)
		if _, taken := r.byNick[nick]; !taken {
			return nick
		}
	}
}

// Deregister removes id and frees its nickname.
func (r *UserRegistry) Deregister(id UserID) {
	nick, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byNick, nick)
}

// LookupID returns the identifier currently holding nickname.
func (r *UserRegistry) LookupID(nickname string) (UserID, bool) {
	id, ok := r.byNick[nickname]
	return id, ok
}

// LookupNickname returns the nickname of id.
func (r *UserRegistry) LookupNickname(id UserID) (string, bool) {
	nick, ok := r.byID[id]
	return nick, ok
}

// Rename replaces the nickname of id. The caller validates the character set.
func (r *UserRegistry) Rename(id UserID, nickname string) error {
	old, ok := r.byID[id]
	if !ok {
		return ErrUnknownUser
	}
	if holder, taken := r.byNick[nickname]; taken && holder != id {
		return ErrNameInUse
	}
	delete(r.byNick, old)
	r.byID[id] = nickname
	r.byNick[nickname] = id
	return nil
}

// Nicknames returns a sorted copy of every registered nickname.
func (r *UserRegistry) Nicknames() []string {
	out := make([]string, 0, len(r.byNick))
	for nick := range r.byNick {
		out = append(out, nick)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered users.
func (r *UserRegistry) Len() int {
	return len(r.byID)
}
