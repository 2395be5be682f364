package provision

import (
	"context"
	"fmt"

	"github.com/privacyops/dsarflow/pkg/drivestore"
	"github.com/privacyops/dsarflow/pkg/dsar"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

// Provisioning step names, used in StepError and audit messages.
const (
	StepCreateFolder = "create_folder"
	StepCopyTemplate = "copy_template"
	StepMoveDocument = "move_document"
	StepWriteHeader  = "write_header"
)

// Identity is never pre-confirmed by the intake pipeline.
const identityConfirmedDefault = "No"

// StepError reports which provisioning step failed for which case.
// Artifacts created by earlier steps are left in place for manual
// reconciliation; there is no automatic rollback.
type StepError struct {
	Ref  string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("provisioning %s: step %s: %v", e.Ref, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Artifact is the result of one successful provisioning.
type Artifact struct {
	Reference  string
	FolderID   string
	DocumentID string
}

// FolderName returns the case folder's display name, e.g. "S1042 - Open".
func FolderName(ref string) string {
	return ref + " - Open"
}

// DocumentTitle returns the case document's display name.
func DocumentTitle(ref string) string {
	return "DSR Reference Number: " + ref
}

type Provisioner struct {
	folders drivestore.Hierarchy
	sheets  sheetstore.Tabular
	kinds   map[dsar.CaseKind]KindConfig
	layout  HeaderLayout
}

func NewProvisioner(folders drivestore.Hierarchy, sheets sheetstore.Tabular, kinds map[dsar.CaseKind]KindConfig, layout HeaderLayout) *Provisioner {
	return &Provisioner{folders: folders, sheets: sheets, kinds: kinds, layout: layout}
}

// Provision creates the case folder, instantiates the kind's template
// into it and populates the document header. Each step hard-depends on
// the previous one succeeding.
func (p *Provisioner) Provision(ctx context.Context, req dsar.CaseRequest) (Artifact, error) {
	ref := req.Reference()

	kindCfg, ok := p.kinds[req.Kind]
	if !ok {
		return Artifact{}, &StepError{Ref: ref, Step: StepCreateFolder, Err: fmt.Errorf("no config for kind %s", req.Kind)}
	}

	folderID, err := p.folders.CreateSubfolder(ctx, kindCfg.ParentFolderID, FolderName(ref))
	if err != nil {
		return Artifact{}, &StepError{Ref: ref, Step: StepCreateFolder, Err: err}
	}

	docID, err := p.folders.CopyAndRenameDocument(ctx, kindCfg.TemplateDocumentID, DocumentTitle(ref))
	if err != nil {
		return Artifact{}, &StepError{Ref: ref, Step: StepCopyTemplate, Err: err}
	}

	if err := p.folders.MoveDocument(ctx, docID, folderID); err != nil {
		return Artifact{}, &StepError{Ref: ref, Step: StepMoveDocument, Err: err}
	}

	if err := p.writeHeader(ctx, docID, ref, req); err != nil {
		return Artifact{}, &StepError{Ref: ref, Step: StepWriteHeader, Err: err}
	}

	return Artifact{Reference: ref, FolderID: folderID, DocumentID: docID}, nil
}

// writeHeader populates the document's header region. Identity-confirmed
// is always "No" at creation: the intake pipeline never pre-confirms
// identity.
func (p *Provisioner) writeHeader(ctx context.Context, docID, ref string, req dsar.CaseRequest) error {
	writes := []struct {
		cell  Cell
		value string
	}{
		{p.layout.Reference, ref},
		{p.layout.Name, req.SubjectName},
		{p.layout.Email, req.SubjectEmail},
		{p.layout.ReceivedDate, req.ReceivedDate},
		{p.layout.DueDate, req.DueDate},
		{p.layout.IdentityConfirmed, identityConfirmedDefault},
	}

	for _, w := range writes {
		if err := p.sheets.WriteCell(ctx, docID, w.cell.Row, w.cell.Col, w.value); err != nil {
			return err
		}
	}
	return nil
}
