package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/amiyamandal-dev/feedbridge/internal/domain"
)

func toEmbed(n domain.Notification) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		URL:         n.URL,
		Title:       n.Title,
		Description: n.Description,
		Timestamp:   n.Timestamp,
		Color:       n.Color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    n.Author.Name,
			URL:     n.Author.URL,
			IconURL: n.Author.IconURL,
		},
	}
	if n.Footer != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: n.Footer.Text}
	}
	if n.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: n.ImageURL}
	}
	return embed
}

func fromChannel(c *discordgo.Channel) domain.Channel {
	ch := domain.Channel{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
		Topic:    c.Topic,
	}
	switch c.Type {
	case discordgo.ChannelTypeGuildText:
		ch.Kind = domain.ChannelText
	case discordgo.ChannelTypeGuildCategory:
		ch.Kind = domain.ChannelCategory
	default:
		ch.Kind = domain.ChannelOther
	}
	return ch
}

func channelType(kind domain.ChannelKind) discordgo.ChannelType {
	if kind == domain.ChannelCategory {
		return discordgo.ChannelTypeGuildCategory
	}
	return discordgo.ChannelTypeGuildText
}
