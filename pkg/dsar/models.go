package dsar

import "fmt"

// ActionKind is what the subject asked for on the intake form. The form
// submits fixed strings; anything else is rejected at parse time rather
// than silently skipped.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionAccessOnly
	ActionDeletionOnly
	ActionBoth
)

const (
	formActionAccess   = "Access To Information"
	formActionDeletion = "Deletion (Deletion Of Information)"
	formActionBoth     = "Both (Access and Deletion)"
)

func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case formActionAccess:
		return ActionAccessOnly, nil
	case formActionDeletion:
		return ActionDeletionOnly, nil
	case formActionBoth:
		return ActionBoth, nil
	}
	return ActionUnknown, fmt.Errorf("unrecognised action kind %q", s)
}

func (k ActionKind) String() string {
	switch k {
	case ActionAccessOnly:
		return formActionAccess
	case ActionDeletionOnly:
		return formActionDeletion
	case ActionBoth:
		return formActionBoth
	}
	return "unknown"
}

// CaseKind identifies one fulfillment unit. A Both record yields two
// cases, Access first.
type CaseKind int

const (
	CaseAccess CaseKind = iota
	CaseDeletion
)

func (k CaseKind) Prefix() string {
	if k == CaseDeletion {
		return "D"
	}
	return "S"
}

func (k CaseKind) String() string {
	if k == CaseDeletion {
		return "Deletion"
	}
	return "Access"
}

// Reference builds the human-readable case identifier, e.g. S1042 or D7.
// Uniqueness of (kind, number) is the case-number source's responsibility.
func Reference(kind CaseKind, caseNumber string) string {
	return kind.Prefix() + caseNumber
}

// IntakeRecord is one row of the intake sheet. Row is the 1-based sheet
// row at read time; it is stable for the duration of a run because the
// form only ever appends.
type IntakeRecord struct {
	Row                int
	RequesterName      string
	RequesterEmail     string
	Action             ActionKind
	AccessCaseNumber   string
	DeletionCaseNumber string
	IdentityID         string
	ReceivedDate       string
	DueDate            string
	Processed          string
}

func (r IntakeRecord) IsProcessed() bool {
	return r.Processed != ""
}

// CaseRequest is one derived sub-case, the unit of provisioning and
// fan-out.
type CaseRequest struct {
	Kind         CaseKind
	CaseNumber   string
	SubjectName  string
	SubjectEmail string
	IdentityID   string
	ReceivedDate string
	DueDate      string
}

func (c CaseRequest) Reference() string {
	return Reference(c.Kind, c.CaseNumber)
}

// DeriveCases expands a validated record into its sub-cases. Both yields
// Access then Deletion, in that order.
func DeriveCases(r IntakeRecord) []CaseRequest {
	base := CaseRequest{
		SubjectName:  r.RequesterName,
		SubjectEmail: r.RequesterEmail,
		IdentityID:   r.IdentityID,
		ReceivedDate: r.ReceivedDate,
		DueDate:      r.DueDate,
	}

	var cases []CaseRequest
	if r.Action == ActionAccessOnly || r.Action == ActionBoth {
		access := base
		access.Kind = CaseAccess
		access.CaseNumber = r.AccessCaseNumber
		cases = append(cases, access)
	}
	if r.Action == ActionDeletionOnly || r.Action == ActionBoth {
		deletion := base
		deletion.Kind = CaseDeletion
		deletion.CaseNumber = r.DeletionCaseNumber
		cases = append(cases, deletion)
	}
	return cases
}
