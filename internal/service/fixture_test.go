package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/repository"
	"nfc-card-admin/internal/session"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

// ServiceSuite wires every service over seeded in-memory registries with a
// fixed clock.
type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	reg   *repository.Registries
	clock time.Time

	citizens     *CitizenService
	cards        *CardService
	institutions *InstitutionService
	dashboard    *DashboardService
	reports      *ReportService
	forms        *FormService
	terminals    *TerminalService
	worker       *WorkerService
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = session.WithSession(context.Background(), session.Session{UserID: 1, Email: "admin@example.com", Role: "admin"})
	s.reg = repository.NewMemoryRegistries()
	_, err := repository.SeedIfEmpty(context.Background(), s.reg)
	s.Require().NoError(err)

	s.clock = fixedNow
	now := func() time.Time { return s.clock }
	m := metrics.New(prometheus.NewRegistry())

	s.citizens = NewCitizenService(s.reg, 10)
	s.citizens.now = now
	s.cards = NewCardService(s.reg, m, 10)
	s.cards.now = now
	s.institutions = NewInstitutionService(s.reg, m, 10)
	s.institutions.now = now
	s.dashboard = NewDashboardService(s.reg)
	s.dashboard.now = now
	s.reports = NewReportService(s.reg)
	s.reports.now = now
	s.forms = NewFormService(s.citizens, s.cards, s.institutions, m, zap.NewNop(), time.Hour, 0)
	s.forms.now = now
	s.terminals = NewTerminalService(s.reg, s.cards)
	s.terminals.now = now
	s.worker = NewWorkerService(s.reg, s.forms, m, zap.NewNop(), time.Minute)
	s.worker.now = now
}
