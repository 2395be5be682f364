package dsar

import "testing"

func record(action ActionKind, accessNum, deletionNum string) IntakeRecord {
	return IntakeRecord{
		Row:                2,
		RequesterName:      "Ada Lovelace",
		RequesterEmail:     "ada@example.com",
		Action:             action,
		AccessCaseNumber:   accessNum,
		DeletionCaseNumber: deletionNum,
		ReceivedDate:       "01/02/19",
		DueDate:            "01/03/19",
	}
}

func TestCheckConsistency(t *testing.T) {
	cases := []struct {
		name    string
		rec     IntakeRecord
		wantErr bool
	}{
		{"access with number", record(ActionAccessOnly, "1042", ""), false},
		{"access missing number", record(ActionAccessOnly, "", ""), true},
		{"deletion with number", record(ActionDeletionOnly, "", "7"), false},
		{"deletion missing number", record(ActionDeletionOnly, "", ""), true},
		{"both with both numbers", record(ActionBoth, "5", "9"), false},
		{"both missing access number", record(ActionBoth, "", "9"), true},
		{"both missing deletion number", record(ActionBoth, "5", ""), true},
		{"unknown action", record(ActionUnknown, "5", "9"), true},
	}

	for _, tc := range cases {
		err := CheckConsistency(tc.rec)
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if tc.wantErr && !IsValidationError(err) {
			t.Fatalf("%s: expected ValidationError, got %T", tc.name, err)
		}
	}
}

func TestCheckBatchStopsAtFirstInvalid(t *testing.T) {
	batch := []IntakeRecord{
		record(ActionAccessOnly, "1", ""),
		record(ActionDeletionOnly, "", ""),
		record(ActionBoth, "2", "3"),
	}
	if err := CheckBatch(batch); err == nil {
		t.Fatal("expected batch validation to fail")
	}
	if err := CheckBatch(batch[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReferenceFormatting(t *testing.T) {
	if got := Reference(CaseAccess, "1042"); got != "S1042" {
		t.Fatalf("expected S1042, got %s", got)
	}
	if got := Reference(CaseDeletion, "7"); got != "D7" {
		t.Fatalf("expected D7, got %s", got)
	}
}

func TestDeriveCasesOrdering(t *testing.T) {
	both := record(ActionBoth, "5", "9")
	cases := DeriveCases(both)
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].Kind != CaseAccess || cases[0].Reference() != "S5" {
		t.Fatalf("expected access case first, got %s", cases[0].Reference())
	}
	if cases[1].Kind != CaseDeletion || cases[1].Reference() != "D9" {
		t.Fatalf("expected deletion case second, got %s", cases[1].Reference())
	}
	for _, c := range cases {
		if c.SubjectEmail != both.RequesterEmail {
			t.Fatalf("case %s lost subject email", c.Reference())
		}
	}

	single := DeriveCases(record(ActionAccessOnly, "12", ""))
	if len(single) != 1 || single[0].Reference() != "S12" {
		t.Fatalf("unexpected cases for access-only record: %+v", single)
	}
}

func TestParseRecordRejectsUnknownAction(t *testing.T) {
	_, err := ParseRecord(4, map[string]string{
		HeaderAction: "Tell Me Everything",
	})
	if err == nil {
		t.Fatal("expected error for unrecognised action kind")
	}
}

func TestParseRecordMapsHeaders(t *testing.T) {
	rec, err := ParseRecord(3, map[string]string{
		HeaderRequesterName:  "Grace Hopper",
		HeaderRequesterEmail: "grace@example.com",
		HeaderAction:         "Both (Access and Deletion)",
		HeaderAccessNumber:   " 15 ",
		HeaderDeletionNumber: "16",
		HeaderIdentityID:     "id-77",
		HeaderReceivedDate:   "02/02/19",
		HeaderDueDate:        "02/03/19",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Row != 3 {
		t.Fatalf("expected row 3, got %d", rec.Row)
	}
	if rec.Action != ActionBoth {
		t.Fatalf("expected Both, got %v", rec.Action)
	}
	if rec.AccessCaseNumber != "15" {
		t.Fatalf("expected trimmed access number, got %q", rec.AccessCaseNumber)
	}
	if rec.IsProcessed() {
		t.Fatal("record with empty marker reported processed")
	}
}
