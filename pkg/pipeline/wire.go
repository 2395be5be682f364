package pipeline

import (
	"fmt"

	"github.com/privacyops/dsarflow/pkg/audit"
	"github.com/privacyops/dsarflow/pkg/common/config"
	"github.com/privacyops/dsarflow/pkg/common/database"
	"github.com/privacyops/dsarflow/pkg/common/kafka"
	"github.com/privacyops/dsarflow/pkg/common/logger"
	"github.com/privacyops/dsarflow/pkg/drivestore"
	"github.com/privacyops/dsarflow/pkg/fanout"
	"github.com/privacyops/dsarflow/pkg/ledger"
	"github.com/privacyops/dsarflow/pkg/provision"
	"github.com/privacyops/dsarflow/pkg/sheetstore"
)

// FromConfig assembles a production orchestrator: HTTP store clients,
// yaml target/layout files, optional postgres ledger and redis lock.
func FromConfig(cfg *config.Config) (*Orchestrator, error) {
	if cfg.IntakeSheetID == "" {
		return nil, fmt.Errorf("INTAKE_SHEET_ID required")
	}
	if cfg.AuditSheetID == "" {
		return nil, fmt.Errorf("AUDIT_SHEET_ID required")
	}

	policy, err := ParseInvalidPolicy(cfg.InvalidRecordPolicy)
	if err != nil {
		return nil, err
	}

	if cfg.TargetsFile == "" {
		return nil, fmt.Errorf("TARGETS_FILE required")
	}
	targets, err := fanout.LoadTargets(cfg.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("loading targets: %w", err)
	}

	layout, err := provision.LoadLayout(cfg.HeaderLayoutFile)
	if err != nil {
		return nil, fmt.Errorf("loading header layout: %w", err)
	}

	kinds, err := provision.Kinds(
		provision.KindConfig{ParentFolderID: cfg.AccessParentFolderID, TemplateDocumentID: cfg.AccessTemplateDocID},
		provision.KindConfig{ParentFolderID: cfg.DeletionParentFolderID, TemplateDocumentID: cfg.DeletionTemplateDocID},
	)
	if err != nil {
		return nil, err
	}

	sheets := sheetstore.NewClient(sheetstore.Options{
		BaseURL:       cfg.SheetAPIBaseURL,
		TokenURL:      cfg.StoreTokenURL,
		ClientID:      cfg.StoreClientID,
		ClientSecret:  cfg.StoreClientSecret,
		CallTimeout:   cfg.StoreCallTimeout,
		RetryAttempts: cfg.StoreRetryAttempts,
		RetryBackoff:  cfg.StoreRetryBackoff,
	})

	folders := drivestore.NewClient(drivestore.Options{
		BaseURL:       cfg.FolderAPIBaseURL,
		TokenURL:      cfg.StoreTokenURL,
		ClientID:      cfg.StoreClientID,
		ClientSecret:  cfg.StoreClientSecret,
		CallTimeout:   cfg.StoreCallTimeout,
		RetryAttempts: cfg.StoreRetryAttempts,
		RetryBackoff:  cfg.StoreRetryBackoff,
	})

	var events *ledger.Repository
	if cfg.LedgerEnabled {
		db, err := database.GetPostgres()
		if err != nil {
			logger.Log.WithError(err).Warn("ledger disabled: postgres unavailable")
		} else {
			events = ledger.NewRepository(db)
			if err := events.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("migrating run ledger: %w", err)
			}
		}
	}

	var lock *RunLock
	if cfg.RunLockEnabled {
		lock = NewRunLock(database.GetRedis(), cfg.RunLockTTL)
	}

	sink := audit.NewSink(sheets, cfg.AuditSheetID)
	if cfg.AuditKafkaTopic != "" {
		sink = sink.WithMirror(kafka.NewProducer(cfg.AuditKafkaTopic))
	}

	provisioner := provision.NewProvisioner(folders, sheets, kinds, layout)

	return New(Deps{
		Sheets:        sheets,
		IntakeSheetID: cfg.IntakeSheetID,
		Pool:          provision.NewPool(provisioner, cfg.ProvisionWorkers),
		Distributor:   fanout.NewDistributor(sheets),
		Targets:       targets,
		Audit:         sink,
		Ledger:        events,
		Lock:          lock,
		Policy:        policy,
	}), nil
}
