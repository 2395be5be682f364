package dsar

import (
	"fmt"
	"strings"
)

// Intake form column headers. The form owns these strings; if the form
// changes, this list must change with it.
const (
	HeaderRequesterName  = "Requester's Name:"
	HeaderRequesterEmail = "Enter DSR Email Address:"
	HeaderAction         = "Action Required:"
	HeaderAccessNumber   = "If DSAR Please Enter Next S-Number:"
	HeaderDeletionNumber = "If Deletion Please Enter Next D-Number:"
	HeaderIdentityID     = "Enter Identity ID:"
	HeaderReceivedDate   = "Received Date:"
	HeaderDueDate        = "Due Date:"
	HeaderProcessed      = "Processed?"
)

// ParseRecord maps one header-keyed sheet row onto an IntakeRecord.
// row is the 1-based sheet row the values came from.
func ParseRecord(row int, values map[string]string) (IntakeRecord, error) {
	action, err := ParseActionKind(strings.TrimSpace(values[HeaderAction]))
	if err != nil {
		return IntakeRecord{}, fmt.Errorf("row %d: %w", row, err)
	}

	return IntakeRecord{
		Row:                row,
		RequesterName:      strings.TrimSpace(values[HeaderRequesterName]),
		RequesterEmail:     strings.TrimSpace(values[HeaderRequesterEmail]),
		Action:             action,
		AccessCaseNumber:   strings.TrimSpace(values[HeaderAccessNumber]),
		DeletionCaseNumber: strings.TrimSpace(values[HeaderDeletionNumber]),
		IdentityID:         strings.TrimSpace(values[HeaderIdentityID]),
		ReceivedDate:       strings.TrimSpace(values[HeaderReceivedDate]),
		DueDate:            strings.TrimSpace(values[HeaderDueDate]),
		Processed:          strings.TrimSpace(values[HeaderProcessed]),
	}, nil
}
