package chat

import (
	"sort"

	"github.com/google/uuid"
)

// Conversation summarises the messages between a user and one partner
type Conversation struct {
	Partner      Participant
	LastMessage  *Message
	MessageCount int
}

// Conversations groups a user's messages by partner. The last message of
// each group is the one with the latest creation time, and groups are
// ordered by that time, newest first.
func Conversations(userID uuid.UUID, messages []*Message) []Conversation {
	byPartner := make(map[uuid.UUID]*Conversation)
	for _, m := range messages {
		if !m.Involves(userID) {
			continue
		}
		partner := m.Partner(userID)
		conv, ok := byPartner[partner.ID]
		if !ok {
			conv = &Conversation{Partner: partner}
			byPartner[partner.ID] = conv
		}
		conv.MessageCount++
		if conv.LastMessage == nil || m.CreatedAt.After(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
			conv.Partner = partner
		}
	}

	out := make([]Conversation, 0, len(byPartner))
	for _, c := range byPartner {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].LastMessage.CreatedAt, out[j].LastMessage.CreatedAt
		if ti.Equal(tj) {
			return out[i].Partner.ID.String() < out[j].Partner.ID.String()
		}
		return ti.After(tj)
	})
	return out
}
