package discord

// ChannelType is the numeric channel kind reported by the Discord API.
type ChannelType int

const (
	ChannelTypeText         ChannelType = 0
	ChannelTypeAnnouncement ChannelType = 5
)

// Channel is a channel as returned by the Discord API. Name and Type are
// pointers because the API omits them for some channel kinds.
type Channel struct {
	ID   string       `json:"id"`
	Name *string      `json:"name,omitempty"`
	Type *ChannelType `json:"type,omitempty"`
}

// IsPostable reports whether messages can be posted to the channel: regular
// text and announcement channels with an identifier.
func (c *Channel) IsPostable() bool {
	if c.ID == "" || c.Type == nil {
		return false
	}
	return *c.Type == ChannelTypeText || *c.Type == ChannelTypeAnnouncement
}

// ChannelSummary is a postable channel with a known name.
type ChannelSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is the subset of a created message the client needs.
type Message struct {
	ID *string `json:"id,omitempty"`
}

// CreateMessageRequest is the body of POST /channels/{id}/messages.
type CreateMessageRequest struct {
	Content string `json:"content"`
}
