package publisher

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"drive-linkbot/models"

	"github.com/bwmarrin/discordgo"
)

const (
	// DefaultPageCapacity is the number of folder sections per message.
	DefaultPageCapacity = 10

	// ColorPurple is the embed color of every folder section.
	ColorPurple = 0x9b59b6

	maxDescriptionLength = 4096

	// MaxPageLength is Discord's limit on the combined embed text of one message.
	MaxPageLength = 6000
)

// Page is the content of one posted message: one embed per folder.
type Page []*discordgo.MessageEmbed

// Render partitions folders, in map order, into pages of at most capacity sections.
func Render(folders *models.FolderMap, isManual bool, capacity int, now time.Time) []Page {
	if capacity <= 0 {
		capacity = DefaultPageCapacity
	}
	sections := folders.Sections()
	pageCount := (len(sections) + capacity - 1) / capacity
	pages := make([]Page, pageCount)

	footer := footerText(isManual)
	timestamp := now.Format(time.RFC3339)
	for p := range pages {
		start := p * capacity
		end := min(start+capacity, len(sections))
		page := make(Page, 0, end-start)
		for _, section := range sections[start:end] {
			page = append(page, sectionEmbed(section, footer, timestamp))
		}
		pages[p] = page
	}
	return pages
}

func footerText(isManual bool) string {
	if isManual {
		return "Last Update: (Manual)"
	}
	return "Last Update: (Automatic)"
}

func sectionEmbed(section *models.FolderSection, footer, timestamp string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       section.Title(),
		URL:         section.URL(),
		Color:       ColorPurple,
		Description: describeFiles(section.Files),
		Author:      &discordgo.MessageEmbedAuthor{Name: section.Path},
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp:   timestamp,
	}
}

// describeFiles lists one markdown link per file, cut on a line boundary
// when the embed description limit would be exceeded.
func describeFiles(files []models.RemoteEntry) string {
	var b strings.Builder
	for i, file := range files {
		line := fileLine(file)
		budget := maxDescriptionLength
		if rest := len(files) - i - 1; rest > 0 {
			budget -= len(moreLine(rest))
		}
		if b.Len()+len(line) > budget {
			b.WriteString(moreLine(len(files) - i))
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func fileLine(file models.RemoteEntry) string {
	if file.ViewURL == "" {
		return file.Name + "\n"
	}
	return fmt.Sprintf("[%s](%s)\n", file.Name, file.ViewURL)
}

func moreLine(n int) string {
	return fmt.Sprintf("…and %d more", n)
}

// PageLength counts the embed text Discord measures against MaxPageLength.
func PageLength(page Page) int {
	n := 0
	for _, embed := range page {
		n += utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
		if embed.Author != nil {
			n += utf8.RuneCountInString(embed.Author.Name)
		}
		if embed.Footer != nil {
			n += utf8.RuneCountInString(embed.Footer.Text)
		}
		for _, field := range embed.Fields {
			n += utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)
		}
	}
	return n
}
