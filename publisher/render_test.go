package publisher

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"drive-linkbot/models"

	"github.com/bwmarrin/discordgo"
)

var renderTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func folderMap(n int) *models.FolderMap {
	m := models.NewFolderMap()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("F%02d", i)
		m.Add(&models.FolderSection{
			Path:   name,
			Source: &models.RemoteEntry{ID: name, Name: name, IsFolder: true, ViewURL: "https://drive/" + name},
		})
	}
	return m
}

func TestRender_Pagination(t *testing.T) {
	tests := []struct {
		folders  int
		capacity int
		sizes    []int
	}{
		{0, 10, nil},
		{1, 10, []int{1}},
		{10, 10, []int{10}},
		{25, 10, []int{10, 10, 5}},
		{7, 3, []int{3, 3, 1}},
		{4, 0, []int{4}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_by_%d", tt.folders, tt.capacity), func(t *testing.T) {
			pages := Render(folderMap(tt.folders), false, tt.capacity, renderTime)
			if len(pages) != len(tt.sizes) {
				t.Fatalf("Expected %d pages, got %d", len(tt.sizes), len(pages))
			}
			n := 0
			for i, page := range pages {
				if len(page) != tt.sizes[i] {
					t.Errorf("Page %d: expected %d embeds, got %d", i, tt.sizes[i], len(page))
				}
				for _, embed := range page {
					if want := fmt.Sprintf("F%02d", n); embed.Title != want {
						t.Errorf("Expected embed %s, got %s", want, embed.Title)
					}
					n++
				}
			}
		})
	}
}

func TestRender_Embed(t *testing.T) {
	m := models.NewFolderMap()
	m.Add(&models.FolderSection{
		Path:   "A",
		Source: &models.RemoteEntry{ID: "a", Name: "A", IsFolder: true, ViewURL: "https://drive/a"},
		Files: []models.RemoteEntry{
			{ID: "1", Name: "f1", ViewURL: "https://drive/1"},
			{ID: "2", Name: "f2", ViewURL: "https://drive/2"},
			{Name: "plain"},
		},
	})
	m.Add(&models.FolderSection{Path: "Extra"})

	pages := Render(m, true, 10, renderTime)
	if len(pages) != 1 || len(pages[0]) != 2 {
		t.Fatalf("Unexpected pages %+v", pages)
	}

	a := pages[0][0]
	if a.Title != "A" || a.URL != "https://drive/a" || a.Color != ColorPurple {
		t.Errorf("Unexpected header %q %q %x", a.Title, a.URL, a.Color)
	}
	if want := "[f1](https://drive/1)\n[f2](https://drive/2)\nplain\n"; a.Description != want {
		t.Errorf("Expected description %q, got %q", want, a.Description)
	}
	if a.Author == nil || a.Author.Name != "A" {
		t.Errorf("Expected path in author line, got %+v", a.Author)
	}
	if a.Footer == nil || a.Footer.Text != "Last Update: (Manual)" {
		t.Errorf("Unexpected footer %+v", a.Footer)
	}
	if a.Timestamp != "2024-03-01T09:30:00Z" {
		t.Errorf("Unexpected timestamp %q", a.Timestamp)
	}

	extra := pages[0][1]
	if extra.Title != "Extra" || extra.URL != "" || extra.Description != "" {
		t.Errorf("Unexpected synthetic embed %+v", extra)
	}

	auto := Render(m, false, 10, renderTime)
	if auto[0][0].Footer.Text != "Last Update: (Automatic)" {
		t.Errorf("Unexpected footer %q", auto[0][0].Footer.Text)
	}
}

func TestDescribeFiles_Truncates(t *testing.T) {
	var files []models.RemoteEntry
	for i := 0; i < 200; i++ {
		files = append(files, models.RemoteEntry{
			Name:    fmt.Sprintf("file-%03d", i),
			ViewURL: fmt.Sprintf("https://drive.google.com/file/d/%040d/view", i),
		})
	}

	desc := describeFiles(files)
	if len(desc) > maxDescriptionLength {
		t.Fatalf("Description is %d bytes, limit is %d", len(desc), maxDescriptionLength)
	}
	if !strings.Contains(desc, "…and ") || !strings.HasSuffix(desc, " more") {
		t.Errorf("Expected overflow marker, got tail %q", desc[len(desc)-40:])
	}

	shown := strings.Count(desc, "\n")
	if want := fmt.Sprintf("…and %d more", len(files)-shown); !strings.HasSuffix(desc, want) {
		t.Errorf("Expected suffix %q", want)
	}
}

func TestPageLength(t *testing.T) {
	page := Page{
		{Title: "A", Description: "ab", Author: &discordgo.MessageEmbedAuthor{Name: "A"}, Footer: &discordgo.MessageEmbedFooter{Text: "xyz"}},
		{Title: "é", Description: "…"},
	}
	if got := PageLength(page); got != 1+2+1+3+1+1 {
		t.Errorf("Expected 9 characters, got %d", got)
	}

	var files []models.RemoteEntry
	for i := 0; i < 40; i++ {
		files = append(files, models.RemoteEntry{Name: fmt.Sprintf("document-%02d", i), ViewURL: fmt.Sprintf("https://drive.google.com/file/d/%060d/view", i)})
	}
	m := models.NewFolderMap()
	for i := 0; i < 10; i++ {
		m.Add(&models.FolderSection{Path: fmt.Sprintf("F%d", i), Files: files})
	}
	pages := Render(m, false, 10, renderTime)
	if n := PageLength(pages[0]); n <= MaxPageLength {
		t.Errorf("Expected ten full folders to exceed %d characters, got %d", MaxPageLength, n)
	}
}
