package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/ledgerbook/backend/internal/application/shared"
	"github.com/ledgerbook/backend/internal/domain/accounting"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// PostingService writes balanced journal entries. Every financial
// mutation in the system funnels through here so the zero-sum and
// tenant-ownership checks cannot be bypassed.
type PostingService struct {
	scope  appshared.TransactionScope
	logger *zap.Logger
}

// NewPostingService creates a posting service
func NewPostingService(scope appshared.TransactionScope, logger *zap.Logger) *PostingService {
	return &PostingService{scope: scope, logger: logger}
}

// PostJournalCommand describes a manual journal posting
type PostJournalCommand struct {
	TenantID uuid.UUID
	RefType  string
	RefID    *uuid.UUID
	PostedOn time.Time
	Memo     string
	Lines    []accounting.LineInput
}

// PostJournal posts a standalone journal entry in its own transaction
func (s *PostingService) PostJournal(ctx context.Context, cmd PostJournalCommand) (*accounting.JournalEntry, error) {
	var entry *accounting.JournalEntry
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		entry, err = PostWithRepos(ctx, repos, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("journal entry posted",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("journal_id", entry.ID.String()),
		zap.String("ref_type", cmd.RefType),
		zap.String("total_debit", entry.TotalDebit().String()),
	)
	return entry, nil
}

// PostWithRepos posts a journal entry on an already-open transaction.
// Orchestrators that create documents and journals atomically call this
// instead of PostJournal.
func PostWithRepos(ctx context.Context, repos appshared.Repositories, cmd PostJournalCommand) (*accounting.JournalEntry, error) {
	if cmd.RefType == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "journal ref type is required")
	}

	if err := verifyAccounts(ctx, repos, cmd.TenantID, cmd.Lines); err != nil {
		return nil, err
	}

	entry, err := accounting.NewJournalEntry(cmd.TenantID, cmd.RefType, cmd.RefID, cmd.PostedOn, cmd.Memo, cmd.Lines)
	if err != nil {
		return nil, err
	}
	if err := repos.Journals().Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// verifyAccounts checks that each referenced account exists and belongs
// to the posting tenant
func verifyAccounts(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, lines []accounting.LineInput) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}

	accounts, err := repos.Accounts().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	if len(accounts) != len(ids) {
		return shared.NewDomainError(shared.CodeNotFound, "one or more accounts do not exist for this tenant")
	}
	return nil
}
