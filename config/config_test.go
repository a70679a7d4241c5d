package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BOT_TOKEN", "DRIVE_ROOT_ID", "BOT_UPDATE_INTERVAL", "COMMANDS_AUTH_ADMIN_ROLES"} {
		t.Setenv(key, "")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, `
bot_token: file-token
bot:
  update_interval: 2h
  page_capacity: 5
drive:
  root_id: root-from-file
  request_timeout: 10s
commands:
  auth:
    admin_roles: ["1", "2"]
`)

	settings, err := Load(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if settings.BotToken != "file-token" || settings.Drive.RootID != "root-from-file" {
		t.Errorf("Unexpected settings %+v", settings)
	}
	if settings.Bot.UpdateInterval != 2*time.Hour || settings.Drive.RequestTimeout != 10*time.Second {
		t.Errorf("Unexpected durations %s %s", settings.Bot.UpdateInterval, settings.Drive.RequestTimeout)
	}
	if settings.Bot.PageCapacity != 5 {
		t.Errorf("Unexpected page capacity %d", settings.Bot.PageCapacity)
	}
	if !slices.Equal(settings.Commands.Auth.AdminRoles, []string{"1", "2"}) {
		t.Errorf("Unexpected admin roles %v", settings.Commands.Auth.AdminRoles)
	}
	if settings.Data.Dir != "./data" || settings.Drive.MaxConcurrentRequests != 8 || settings.Log.Level != "info" {
		t.Errorf("Expected defaults to fill the gaps, got %+v", settings)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, "bot_token: file-token\ndrive:\n  root_id: root-from-file\n")
	t.Setenv("DRIVE_ROOT_ID", "root-from-env")
	t.Setenv("BOT_UPDATE_INTERVAL", "15m")
	t.Setenv("COMMANDS_AUTH_ADMIN_ROLES", "7,8")

	settings, err := Load(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if settings.Drive.RootID != "root-from-env" {
		t.Errorf("Expected env to win, got %q", settings.Drive.RootID)
	}
	if settings.Bot.UpdateInterval != 15*time.Minute {
		t.Errorf("Unexpected interval %s", settings.Bot.UpdateInterval)
	}
	if !slices.Equal(settings.Commands.Auth.AdminRoles, []string{"7", "8"}) {
		t.Errorf("Unexpected admin roles %v", settings.Commands.Auth.AdminRoles)
	}
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("DRIVE_ROOT_ID", "root")

	settings, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if settings.Bot.UpdateInterval != time.Hour {
		t.Errorf("Expected default interval, got %s", settings.Bot.UpdateInterval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing token", "drive:\n  root_id: r\n", "bot token"},
		{"missing root", "bot_token: t\n", "drive root"},
		{"zero interval", "bot_token: t\ndrive:\n  root_id: r\nbot:\n  update_interval: 0s\n", "update_interval"},
		{"broken yaml", "bot_token: [unterminated\n", "config file"},
		{"page capacity too large", "bot_token: t\ndrive:\n  root_id: r\nbot:\n  page_capacity: 11\n", "page_capacity"},
		{"page capacity zero", "bot_token: t\ndrive:\n  root_id: r\nbot:\n  page_capacity: 0\n", "page_capacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
