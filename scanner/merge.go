package scanner

import "drive-linkbot/models"

// Merge folds custom links into folders in link order. A link whose folder
// was not scanned gets a synthetic section keyed by its folder name.
func Merge(folders *models.FolderMap, links []models.CustomLink) *models.FolderMap {
	for _, link := range links {
		if section, ok := folders.Get(link.FolderName); ok {
			section.Files = append(section.Files, link.Entry())
			continue
		}
		folders.Add(&models.FolderSection{
			Path:  link.FolderName,
			Files: []models.RemoteEntry{link.Entry()},
		})
	}
	return folders
}
