package skill

import "sort"

// Version is the skill version reported by Metadata.
const Version = "0.1.0"

// Metadata describes the skill to a tool host.
type Metadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Operations  []string `json:"operations"`
}

var operations = []string{
	"list_files",
	"search",
	"get_file_content",
	"upload_content",
	"create_folder",
	"delete_item",
	"item_info",
	"user_info",
}

// Metadata returns the static description of the skill.
func (s *Skill) Metadata() Metadata {
	ops := append([]string(nil), operations...)
	sort.Strings(ops)

	return Metadata{
		Name:        "onedrive",
		Version:     Version,
		Description: "Work with files in Microsoft OneDrive through the Graph API",
		Operations:  ops,
	}
}
