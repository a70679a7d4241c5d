package publisher

import (
	"errors"
	"fmt"
	"net/http"

	"drive-linkbot/models"

	"github.com/bwmarrin/discordgo"
)

// Channel is the subset of *discordgo.Session the publisher needs.
// *discordgo.Session satisfies this interface.
type Channel interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

var _ Channel = (*discordgo.Session)(nil)

// Reconcile makes channelID hold exactly pages, in order, reusing the
// previously tracked messages where they still exist. It returns the new
// tracked IDs, always one per page. Any failure other than a message having
// been deleted externally aborts with models.ErrChannelWrite, wrapped in a
// *PartialWriteError when messages were already posted before the failure.
func Reconcile(ch Channel, channelID string, previous []string, pages []Page) ([]string, error) {
	ids, sent, err := reconcile(ch, channelID, previous, pages)
	if err != nil && len(sent) > 0 {
		return nil, &PartialWriteError{ChannelID: channelID, Sent: sent, Err: err}
	}
	return ids, err
}

// PartialWriteError reports messages a failed reconcile posted but could not
// record. They stay in the channel until removed by hand.
type PartialWriteError struct {
	ChannelID string
	Sent      []string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%v (%d untracked messages left in channel)", e.Err, len(e.Sent))
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

func reconcile(ch Channel, channelID string, previous []string, pages []Page) (ids, sent []string, err error) {
	ids = make([]string, len(pages))
	for i, page := range pages {
		if i < len(previous) {
			exists, err := messageExists(ch, channelID, previous[i])
			if err != nil {
				return nil, sent, err
			}
			if exists {
				edit := discordgo.NewMessageEdit(channelID, previous[i]).SetEmbeds(page)
				if _, err := ch.ChannelMessageEditComplex(edit); err != nil {
					return nil, sent, fmt.Errorf("%w: edit message %s: %v", models.ErrChannelWrite, previous[i], err)
				}
				ids[i] = previous[i]
				continue
			}
		}

		msg, err := ch.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embeds: page})
		if err != nil {
			return nil, sent, fmt.Errorf("%w: send page %d: %v", models.ErrChannelWrite, i, err)
		}
		ids[i] = msg.ID
		sent = append(sent, msg.ID)
	}

	for i := len(previous) - 1; i >= len(pages); i-- {
		err := ch.ChannelMessageDelete(channelID, previous[i])
		if err != nil && !isNotFound(err) {
			return nil, sent, fmt.Errorf("%w: delete message %s: %v", models.ErrChannelWrite, previous[i], err)
		}
	}
	return ids, sent, nil
}

func messageExists(ch Channel, channelID, messageID string) (bool, error) {
	_, err := ch.ChannelMessage(channelID, messageID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: fetch message %s: %v", models.ErrChannelWrite, messageID, err)
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return true
	}
	return restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}
