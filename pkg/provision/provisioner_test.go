package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/privacyops/dsarflow/pkg/drivestore"
	"github.com/privacyops/dsarflow/pkg/dsar"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

func testKinds(t *testing.T) map[dsar.CaseKind]KindConfig {
	t.Helper()
	kinds, err := Kinds(
		KindConfig{ParentFolderID: "pf-access", TemplateDocumentID: "tpl-access"},
		KindConfig{ParentFolderID: "pf-deletion", TemplateDocumentID: "tpl-deletion"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return kinds
}

func seedTemplates(folders *drivestore.Memory) {
	folders.SeedDocument("tpl-access", "Access Template", "pf-access")
	folders.SeedDocument("tpl-deletion", "Deletion Template", "pf-deletion")
}

func accessRequest() dsar.CaseRequest {
	return dsar.CaseRequest{
		Kind:         dsar.CaseAccess,
		CaseNumber:   "1042",
		SubjectName:  "Ada Lovelace",
		SubjectEmail: "ada@example.com",
		ReceivedDate: "01/02/19",
		DueDate:      "01/03/19",
	}
}

func TestProvisionCreatesArtifacts(t *testing.T) {
	folders := drivestore.NewMemory()
	seedTemplates(folders)
	sheets := sheetstore.NewMemory()
	p := NewProvisioner(folders, sheets, testKinds(t), DefaultLayout())

	artifact, err := p.Provision(context.Background(), accessRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Reference != "S1042" {
		t.Fatalf("expected reference S1042, got %s", artifact.Reference)
	}

	folder, ok := folders.FolderByName("S1042 - Open")
	if !ok {
		t.Fatal("expected folder S1042 - Open")
	}
	if folder.ParentID != "pf-access" {
		t.Fatalf("folder created under wrong parent: %s", folder.ParentID)
	}

	doc, ok := folders.DocumentByName("DSR Reference Number: S1042")
	if !ok {
		t.Fatal("expected case document")
	}
	if len(doc.Parents) != 1 || doc.Parents[0] != folder.ID {
		t.Fatalf("document not moved into case folder: %v", doc.Parents)
	}
}

func TestProvisionDeletionNaming(t *testing.T) {
	folders := drivestore.NewMemory()
	seedTemplates(folders)
	p := NewProvisioner(folders, sheetstore.NewMemory(), testKinds(t), DefaultLayout())

	req := accessRequest()
	req.Kind = dsar.CaseDeletion
	req.CaseNumber = "7"

	artifact, err := p.Provision(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Reference != "D7" {
		t.Fatalf("expected D7, got %s", artifact.Reference)
	}
	if _, ok := folders.FolderByName("D7 - Open"); !ok {
		t.Fatal("expected folder D7 - Open")
	}
}

func TestProvisionHeaderDefaultsIdentityToNo(t *testing.T) {
	folders := drivestore.NewMemory()
	seedTemplates(folders)
	sheets := sheetstore.NewMemory()
	layout := DefaultLayout()
	p := NewProvisioner(folders, sheets, testKinds(t), layout)

	artifact, err := p.Provision(context.Background(), accessRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docID := artifact.DocumentID
	if got := sheets.Cell(docID, layout.Reference.Row, layout.Reference.Col); got != "S1042" {
		t.Fatalf("reference cell: got %q", got)
	}
	if got := sheets.Cell(docID, layout.Email.Row, layout.Email.Col); got != "ada@example.com" {
		t.Fatalf("email cell: got %q", got)
	}
	if got := sheets.Cell(docID, layout.IdentityConfirmed.Row, layout.IdentityConfirmed.Col); got != "No" {
		t.Fatalf("identity confirmed should default to No, got %q", got)
	}
}

type failingCopy struct {
	*drivestore.Memory
}

func (f *failingCopy) CopyAndRenameDocument(ctx context.Context, templateID, newName string) (string, error) {
	return "", errors.New("backend unavailable")
}

func TestProvisionFailureLeavesEarlierArtifacts(t *testing.T) {
	mem := drivestore.NewMemory()
	seedTemplates(mem)
	p := NewProvisioner(&failingCopy{Memory: mem}, sheetstore.NewMemory(), testKinds(t), DefaultLayout())

	_, err := p.Provision(context.Background(), accessRequest())
	if err == nil {
		t.Fatal("expected provisioning to fail")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %T", err)
	}
	if stepErr.Step != StepCopyTemplate {
		t.Fatalf("expected failure at %s, got %s", StepCopyTemplate, stepErr.Step)
	}
	if !strings.Contains(stepErr.Ref, "S1042") {
		t.Fatalf("expected reference in error, got %q", stepErr.Ref)
	}

	// the folder created before the failing step stays in place
	if _, ok := mem.FolderByName("S1042 - Open"); !ok {
		t.Fatal("expected partially created folder to remain")
	}
}

func TestPoolCollectsAllResults(t *testing.T) {
	folders := drivestore.NewMemory()
	seedTemplates(folders)
	p := NewProvisioner(folders, sheetstore.NewMemory(), testKinds(t), DefaultLayout())
	pool := NewPool(p, 2)

	access := accessRequest()
	deletion := accessRequest()
	deletion.Kind = dsar.CaseDeletion
	deletion.CaseNumber = "9"

	results := pool.ProvisionAll(context.Background(), []dsar.CaseRequest{access, deletion})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Request.Reference() != "S1042" || results[1].Request.Reference() != "D9" {
		t.Fatal("results not in request order")
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected error for %s: %v", r.Request.Reference(), r.Err)
		}
	}
}
