package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Permission levels required by commands.
const (
	LevelDeveloper = "developer"
	LevelAdmin     = "admin"
	LevelGuest     = "guest"
)

// Auth provides methods for authorization checks.
type Auth struct {
	developers []string
	adminRoles []string
}

// NewAuth creates an Auth from the configured developer IDs and admin role IDs.
func NewAuth(developers, adminRoles []string) *Auth {
	return &Auth{developers: developers, adminRoles: adminRoles}
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	return slices.Contains(a.developers, userID)
}

// IsAdmin checks if a member holds an admin role or may manage the server.
func (a *Auth) IsAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	if member.Permissions&(discordgo.PermissionManageGuild|discordgo.PermissionAdministrator) != 0 {
		return true
	}
	for _, roleID := range member.Roles {
		if slices.Contains(a.adminRoles, roleID) {
			return true
		}
	}
	return false
}

// CheckPermission checks if the invoking member has the required permission level.
func (a *Auth) CheckPermission(i *discordgo.InteractionCreate, requiredLevel string) bool {
	member := i.Member
	var userID string
	switch {
	case member != nil && member.User != nil:
		userID = member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}

	switch requiredLevel {
	case LevelDeveloper:
		return a.IsDeveloper(userID)
	case LevelAdmin:
		return a.IsDeveloper(userID) || a.IsAdmin(member)
	case LevelGuest:
		return true
	default:
		return false
	}
}
