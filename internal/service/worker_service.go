package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/repository"
)

// Sweeper drops idle resources on each worker tick.
type Sweeper interface {
	Sweep() int
}

// ReconcileReport counts the corrections made by one pass.
type ReconcileReport struct {
	ExpiredCards        int
	ExpiredInstitutions int
	OwnerCopies         int
	CitizenStatuses     int
	ExpiredForms        int
}

func (r ReconcileReport) counts() map[string]int {
	return map[string]int{
		"expired_cards":        r.ExpiredCards,
		"expired_institutions": r.ExpiredInstitutions,
		"owner_copies":         r.OwnerCopies,
		"citizen_statuses":     r.CitizenStatuses,
		"expired_forms":        r.ExpiredForms,
	}
}

func (r ReconcileReport) Total() int {
	return r.ExpiredCards + r.ExpiredInstitutions + r.OwnerCopies + r.CitizenStatuses + r.ExpiredForms
}

const defaultWorkerInterval = time.Minute

// WorkerService periodically brings derived data back in line with the
// records it is derived from.
type WorkerService struct {
	citizens     repository.CitizenRepository
	cards        repository.CardRepository
	institutions repository.InstitutionRepository
	audit        repository.AuditRepository
	sweeper      Sweeper
	metrics      *metrics.Metrics
	logger       *zap.Logger
	interval     time.Duration
	now          func() time.Time
}

// NewWorkerService builds the worker; a non-positive interval falls back to
// one minute.
func NewWorkerService(reg *repository.Registries, sweeper Sweeper, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) *WorkerService {
	if interval <= 0 {
		interval = defaultWorkerInterval
	}
	return &WorkerService{
		citizens:     reg.Citizens,
		cards:        reg.Cards,
		institutions: reg.Institutions,
		audit:        reg.Audit,
		sweeper:      sweeper,
		metrics:      m,
		logger:       logger,
		interval:     interval,
		now:          time.Now,
	}
}

// Start runs a pass immediately and then on every tick until ctx is done
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Background worker started", zap.Duration("interval", w.interval))
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Background worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *WorkerService) tick(ctx context.Context) {
	report, err := w.Reconcile(ctx)
	if err != nil {
		w.logger.Error("Reconciliation failed", zap.Error(err))
		return
	}
	if report.Total() > 0 {
		w.logger.Info("Reconciliation applied corrections",
			zap.Int("expired_cards", report.ExpiredCards),
			zap.Int("expired_institutions", report.ExpiredInstitutions),
			zap.Int("owner_copies", report.OwnerCopies),
			zap.Int("citizen_statuses", report.CitizenStatuses),
			zap.Int("expired_forms", report.ExpiredForms),
		)
	}
}

// Reconcile runs one pass: expire cards and licenses past their dates,
// refresh the citizen fields copied onto cards, and recompute each citizen's
// card status from their newest card.
func (w *WorkerService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	start := w.now()
	day := today(start)
	var report ReconcileReport

	citizens, err := w.citizens.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list citizens: %w", err)
	}
	byID := make(map[uint]models.Citizen, len(citizens))
	for _, c := range citizens {
		byID[c.ID] = c
	}

	cards, err := w.cards.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list cards: %w", err)
	}
	// newest card per citizen; on equal issue dates the later row wins
	newest := make(map[uint]models.Card, len(cards))
	for _, card := range cards {
		changed := false
		if card.Status == models.CardStatusActive && card.ExpiryDate.Before(day) {
			card.Status = models.CardStatusExpired
			report.ExpiredCards++
			changed = true
			if err := w.cards.AppendUsage(ctx, card.ID, models.CardUsageEvent{
				Date: day, Action: "Card Expired", Location: issuingOffice, Details: "Expiry date passed",
			}); err != nil {
				return report, fmt.Errorf("failed to record card expiry: %w", err)
			}
			_ = w.audit.CreateAuditLog(ctx, nil, "card_expire", card.CardNumber,
				fmt.Sprintf("Card %s expired on %s", card.CardNumber, formatDay(card.ExpiryDate)))
		}
		if owner, ok := byID[card.CitizenID]; ok &&
			(owner.Name != card.CitizenName || owner.NationalID != card.NationalID) {
			card.CitizenName = owner.Name
			card.NationalID = owner.NationalID
			report.OwnerCopies++
			changed = true
		}
		if changed {
			if err := w.cards.Update(ctx, &card); err != nil {
				return report, fmt.Errorf("failed to update card %s: %w", card.CardNumber, err)
			}
		}
		if prev, ok := newest[card.CitizenID]; !ok || !card.IssueDate.Before(prev.IssueDate) {
			newest[card.CitizenID] = card
		}
	}

	for _, c := range citizens {
		want := models.CardStatusNone
		if card, ok := newest[c.ID]; ok {
			want = card.Status
		}
		if c.CardStatus == want {
			continue
		}
		full, err := w.citizens.Get(ctx, c.ID)
		if err != nil {
			return report, fmt.Errorf("failed to load citizen %d: %w", c.ID, err)
		}
		full.CardStatus = want
		if err := w.citizens.Update(ctx, full); err != nil {
			return report, fmt.Errorf("failed to update citizen %d: %w", c.ID, err)
		}
		report.CitizenStatuses++
	}

	institutions, err := w.institutions.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list institutions: %w", err)
	}
	for _, inst := range institutions {
		if inst.Status != models.InstitutionActive || !inst.LicenseExpiry.Before(day) {
			continue
		}
		inst.Status = models.InstitutionExpired
		if err := w.institutions.Update(ctx, &inst); err != nil {
			return report, fmt.Errorf("failed to expire institution %d: %w", inst.ID, err)
		}
		report.ExpiredInstitutions++
		_ = w.audit.CreateAuditLog(ctx, nil, "institution_expire", inst.Name,
			fmt.Sprintf("License %s of %s expired on %s", inst.LicenseNumber, inst.Name, formatDay(inst.LicenseExpiry)))
	}

	if w.sweeper != nil {
		report.ExpiredForms = w.sweeper.Sweep()
	}

	w.metrics.ObserveReconcile(start, report.counts())
	return report, nil
}
