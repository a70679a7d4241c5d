package utils

import (
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type mockEmbedSender struct {
	mutex  sync.Mutex
	embeds []*discordgo.MessageEmbed
}

func (m *mockEmbedSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func TestAdminChannelHook(t *testing.T) {
	sender := &mockEmbedSender{}
	hook := &AdminChannelHook{sender: sender, channelID: "9"}
	logger := zerolog.Nop().Level(zerolog.DebugLevel).Hook(hook)

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")
	logger.Warn().Msg("careful")
	logger.Error().Msg("broken")

	if len(sender.embeds) != 2 {
		t.Fatalf("Expected only warn and error to be mirrored, got %d", len(sender.embeds))
	}
	if sender.embeds[0].Title != "Log Level: WARN" || sender.embeds[0].Color != ColorWarn || sender.embeds[0].Description != "careful" {
		t.Errorf("Unexpected warn embed %+v", sender.embeds[0])
	}
	if sender.embeds[1].Title != "Log Level: ERROR" || sender.embeds[1].Color != ColorError {
		t.Errorf("Unexpected error embed %+v", sender.embeds[1])
	}
}

func TestWithAdminChannel_Disabled(t *testing.T) {
	sender := &mockEmbedSender{}
	logger := WithAdminChannel(zerolog.Nop(), sender, "")
	logger.Error().Msg("broken")
	if len(sender.embeds) != 0 {
		t.Errorf("Expected nothing sent without a channel, got %d", len(sender.embeds))
	}
}

func TestNewLogger_Level(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := NewLogger(in, false).GetLevel(); got != want {
			t.Errorf("NewLogger(%q) level = %s, want %s", in, got, want)
		}
	}
}

func TestCheckPermission(t *testing.T) {
	auth := NewAuth([]string{"dev"}, []string{"role-admin"})

	member := func(userID string, perms int64, roles ...string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}, Permissions: perms, Roles: roles},
		}}
	}

	tests := []struct {
		name  string
		i     *discordgo.InteractionCreate
		level string
		want  bool
	}{
		{"guest anyone", member("u", 0), LevelGuest, true},
		{"admin plain member", member("u", 0), LevelAdmin, false},
		{"admin manage guild", member("u", discordgo.PermissionManageGuild), LevelAdmin, true},
		{"admin administrator", member("u", discordgo.PermissionAdministrator), LevelAdmin, true},
		{"admin role", member("u", 0, "other", "role-admin"), LevelAdmin, true},
		{"admin developer", member("dev", 0), LevelAdmin, true},
		{"developer only", member("u", discordgo.PermissionAdministrator), LevelDeveloper, false},
		{"developer", member("dev", 0), LevelDeveloper, true},
		{"unknown level", member("dev", 0), "", false},
		{"direct message", &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "u"}}}, LevelAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.CheckPermission(tt.i, tt.level); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
