package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/privacyops/dsarflow/pkg/dsar"
	"gopkg.in/yaml.v3"
)

// KindConfig pairs a case kind with its parent folder and template
// document. Access and Deletion are configured independently.
type KindConfig struct {
	ParentFolderID     string `yaml:"parent_folder_id" json:"parent_folder_id"`
	TemplateDocumentID string `yaml:"template_document_id" json:"template_document_id"`
}

// Cell addresses one cell of the case document, 1-based.
type Cell struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// HeaderLayout maps the case document's header fields to cells. The
// template owns this layout; if the template changes, the layout file
// must change with it or unrelated cells get overwritten.
type HeaderLayout struct {
	Reference         Cell `yaml:"reference" json:"reference"`
	Name              Cell `yaml:"name" json:"name"`
	Email             Cell `yaml:"email" json:"email"`
	ReceivedDate      Cell `yaml:"received_date" json:"received_date"`
	DueDate           Cell `yaml:"due_date" json:"due_date"`
	IdentityConfirmed Cell `yaml:"identity_confirmed" json:"identity_confirmed"`
}

func DefaultLayout() HeaderLayout {
	return HeaderLayout{
		Reference:         Cell{Row: 1, Col: 2},
		Name:              Cell{Row: 2, Col: 2},
		Email:             Cell{Row: 3, Col: 2},
		ReceivedDate:      Cell{Row: 4, Col: 2},
		DueDate:           Cell{Row: 5, Col: 2},
		IdentityConfirmed: Cell{Row: 6, Col: 2},
	}
}

func LoadLayout(path string) (HeaderLayout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultLayout(), err
	}

	var layout HeaderLayout
	if err := yaml.Unmarshal(content, &layout); err != nil {
		return HeaderLayout{}, err
	}
	return layout, nil
}

// Kinds builds the per-kind configuration map and rejects incomplete
// entries before any run starts.
func Kinds(access, deletion KindConfig) (map[dsar.CaseKind]KindConfig, error) {
	if access.ParentFolderID == "" || access.TemplateDocumentID == "" {
		return nil, fmt.Errorf("access kind config incomplete")
	}
	if deletion.ParentFolderID == "" || deletion.TemplateDocumentID == "" {
		return nil, fmt.Errorf("deletion kind config incomplete")
	}
	return map[dsar.CaseKind]KindConfig{
		dsar.CaseAccess:   access,
		dsar.CaseDeletion: deletion,
	}, nil
}
