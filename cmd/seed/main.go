package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/appforge-labs/devopshub/internal/models"
	"github.com/appforge-labs/devopshub/internal/store"
	"github.com/appforge-labs/devopshub/pkg/config"
	"github.com/appforge-labs/devopshub/pkg/logger"
)

// Seeds the CSV tables with a deterministic sample corpus. Safe to run
// repeatedly: populated tables are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	requests := store.NewRequestStore(cfg.Data.Dir, logr)
	errs := store.NewErrorStore(cfg.Data.Dir, logr)
	projects := store.NewProjectStore(cfg.Data.Dir, logr)

	for _, s := range []interface{ Bootstrap() error }{requests, errs, projects} {
		if err := s.Bootstrap(); err != nil {
			logr.Sugar().Fatalw("bootstrap failed", "error", err)
		}
	}

	seedRequests(logr, requests)
	seedErrors(logr, errs)
	seedProjects(logr, projects)

	logr.Info("seeding finished", zap.String("data_dir", cfg.Data.Dir))
}

func seedRequests(logr *zap.Logger, s *store.RequestStore) {
	existing, err := s.Load()
	if err != nil {
		logr.Sugar().Fatalw("load requests failed", "error", err)
	}
	if len(existing) > 0 {
		logr.Info("requests table already populated, skipping", zap.Int("rows", len(existing)))
		return
	}

	records := []models.Request{
		{
			Title: "Monthly GL reconciliation extract", Description: "Pull the general ledger balancing file for month-end reconciliation",
			Type: models.RequestTypeReport, Priority: models.PriorityHigh, Status: models.RequestStatusCompleted,
			RequesterName: "Dana Whitfield", RequesterEmail: "dana.whitfield@bank.example", RequesterDepartment: "Accounting",
			AssignedTo: "Marcus Lee", Technology: "SQL",
			CreatedDate: models.MustDate("2026-01-05"), DueDate: models.MustDate("2026-01-20"), CompletedDate: models.MustDate("2026-01-18"),
		},
		{
			Title: "Teller cash drawer audit script", Description: "Flag drawers with variances over tolerance for branch audits",
			Type: models.RequestTypeScript, Priority: models.PriorityCritical, Status: models.RequestStatusInProgress,
			RequesterName: "Omar Haddad", RequesterEmail: "omar.haddad@bank.example", RequesterDepartment: "Operations",
			AssignedTo: "Priya Nair", Technology: "Python",
			CreatedDate: models.MustDate("2026-01-22"), DueDate: models.MustDate("2026-03-31"),
		},
		{
			Title: "Dormant account sweep", Description: "Identify accounts with no activity in 24 months for escheatment review",
			Type: models.RequestTypeSQLQuery, Priority: models.PriorityMedium, Status: models.RequestStatusCompleted,
			RequesterName: "Ruth Calder", RequesterEmail: "ruth.calder@bank.example", RequesterDepartment: "Compliance",
			AssignedTo: "Marcus Lee", Technology: "SQL",
			CreatedDate: models.MustDate("2026-01-28"), DueDate: models.MustDate("2026-02-15"), CompletedDate: models.MustDate("2026-02-11"),
		},
		{
			Title: "ACH return item processor", Description: "Automate posting of ACH return files received from Fiserv",
			Type: models.RequestTypeCustomProgram, Priority: models.PriorityHigh, Status: models.RequestStatusInProgress,
			RequesterName: "Dana Whitfield", RequesterEmail: "dana.whitfield@bank.example", RequesterDepartment: "Accounting",
			AssignedTo: "Priya Nair", Technology: "Python", RelatedProject: "PROJ-002",
			CreatedDate: models.MustDate("2026-02-03"), DueDate: models.MustDate("2026-04-15"),
		},
		{
			Title: "Branch transaction volume report", Description: "Weekly per-branch transaction counts for staffing decisions",
			Type: models.RequestTypeReport, Priority: models.PriorityLow, Status: models.RequestStatusSubmitted,
			RequesterName: "Luis Romero", RequesterEmail: "luis.romero@bank.example", RequesterDepartment: "Retail Banking",
			AssignedTo: models.UnassignedSentinel, Technology: "SQL",
			CreatedDate: models.MustDate("2026-02-10"),
		},
		{
			Title: "Rate sheet loader", Description: "Load the daily deposit rate sheet into the core system",
			Type: models.RequestTypeScript, Priority: models.PriorityMedium, Status: models.RequestStatusCompleted,
			RequesterName: "Omar Haddad", RequesterEmail: "omar.haddad@bank.example", RequesterDepartment: "Operations",
			AssignedTo: "Sofia Petrov", Technology: "PowerShell",
			CreatedDate: models.MustDate("2026-02-12"), DueDate: models.MustDate("2026-02-28"), CompletedDate: models.MustDate("2026-02-26"),
		},
		{
			Title: "CD maturity notice mailing list", Description: "Customers with certificates maturing in the next 30 days",
			Type: models.RequestTypeSQLQuery, Priority: models.PriorityMedium, Status: models.RequestStatusInProgress,
			RequesterName: "Ruth Calder", RequesterEmail: "ruth.calder@bank.example", RequesterDepartment: "Deposit Services",
			AssignedTo: "Sofia Petrov", Technology: "SQL",
			CreatedDate: models.MustDate("2026-02-20"), DueDate: models.MustDate("2026-03-20"),
		},
		{
			Title: "Wire cutoff dashboard feed", Description: "Same-day wire totals against the daily cutoff for the wire room",
			Type: models.RequestTypeCustomProgram, Priority: models.PriorityHigh, Status: models.RequestStatusSubmitted,
			RequesterName: "Janet Okafor", RequesterEmail: "janet.okafor@bank.example", RequesterDepartment: "Wire Room",
			AssignedTo: models.UnassignedSentinel, Technology: "Go", RelatedProject: "PROJ-004",
			CreatedDate: models.MustDate("2026-03-02"), DueDate: models.MustDate("2026-05-01"),
		},
		{
			Title: "Overdraft fee refund batch", Description: "One-time refund batch for fees assessed during the outage window",
			Type: models.RequestTypeScript, Priority: models.PriorityCritical, Status: models.RequestStatusSubmitted,
			RequesterName: "Luis Romero", RequesterEmail: "luis.romero@bank.example", RequesterDepartment: "Retail Banking",
			AssignedTo: models.UnassignedSentinel, Technology: "Python",
			CreatedDate: models.MustDate("2026-03-09"), DueDate: models.MustDate("2026-03-16"),
		},
		{
			Title: "Loan officer pipeline report", Description: "Monthly origination pipeline by officer and product",
			Type: models.RequestTypeReport, Priority: models.PriorityLow, Status: models.RequestStatusSubmitted,
			RequesterName: "Janet Okafor", RequesterEmail: "janet.okafor@bank.example", RequesterDepartment: "Lending",
			AssignedTo: models.UnassignedSentinel, Technology: "SQL",
			CreatedDate: models.MustDate("2026-03-11"),
		},
	}
	appendRequests(logr, s, records)
}

func appendRequests(logr *zap.Logger, s *store.RequestStore, records []models.Request) {
	for i := range records {
		id, err := s.NextID()
		if err != nil {
			logr.Sugar().Fatalw("allocate request id failed", "error", err)
		}
		records[i].ID = id
		if err := s.Append(records[i]); err != nil {
			logr.Sugar().Fatalw("append request failed", "id", id, "error", err)
		}
	}
	logr.Info("requests seeded", zap.Int("rows", len(records)))
}

func seedErrors(logr *zap.Logger, s *store.ErrorStore) {
	existing, err := s.Load()
	if err != nil {
		logr.Sugar().Fatalw("load errors failed", "error", err)
	}
	if len(existing) > 0 {
		logr.Info("errors table already populated, skipping", zap.Int("rows", len(existing)))
		return
	}

	records := []models.SystemError{
		{
			ErrorCode: "DS-4417", System: models.SystemDatasafe, Severity: models.PriorityCritical,
			Description: "Nightly posting batch aborted at step 12", Status: models.ErrorStatusReportedToFiserv,
			ResolutionNotes: "Fiserv patched the posting module", DateReported: models.MustDate("2026-01-12"),
			DateResolved: models.MustDate("2026-01-15"), ReportedToFiserv: true, FiservTicket: "FSV-2026-2001",
		},
		{
			ErrorCode: "KS-0093", System: models.SystemKeystone, Severity: models.PriorityMedium,
			Description: "Statement render drops the YTD interest line for IRA accounts", Status: models.ErrorStatusInvestigating,
			DateReported: models.MustDate("2026-01-27"),
		},
		{
			ErrorCode: "CI-0031", System: models.SystemCustomIntegration, Severity: models.PriorityHigh,
			Description: "ACH file handoff to the core stalled past the processing window", Status: models.ErrorStatusFixed,
			ResolutionNotes: "Restarted the transfer agent and re-queued the file", DateReported: models.MustDate("2026-02-04"),
			DateResolved: models.MustDate("2026-02-04"),
		},
		{
			ErrorCode: "DS-5102", System: models.SystemDatasafe, Severity: models.PriorityLow,
			Description: "Teller receipt footer prints the previous branch name", Status: models.ErrorStatusNew,
			DateReported: models.MustDate("2026-02-18"),
		},
		{
			ErrorCode: "KS-0117", System: models.SystemKeystone, Severity: models.PriorityCritical,
			Description: "Online banking login loop for customers with joint accounts", Status: models.ErrorStatusReportedToFiserv,
			DateReported: models.MustDate("2026-02-24"), DateResolved: models.MustDate("2026-03-01"),
			ReportedToFiserv: true, FiservTicket: "FSV-2026-2002",
		},
		{
			ErrorCode: "CI-0044", System: models.SystemCustomIntegration, Severity: models.PriorityMedium,
			Description: "Rate sheet loader rejects sheets with a trailing blank row", Status: models.ErrorStatusFixed,
			ResolutionNotes: "Loader now trims trailing blank rows", DateReported: models.MustDate("2026-03-03"),
			DateResolved: models.MustDate("2026-03-05"),
		},
		{
			ErrorCode: "DS-5230", System: models.SystemDatasafe, Severity: models.PriorityHigh,
			Description: "Escrow analysis run double-counts county tax disbursements", Status: models.ErrorStatusInvestigating,
			DateReported: models.MustDate("2026-03-08"),
		},
		{
			ErrorCode: "KS-0121", System: models.SystemKeystone, Severity: models.PriorityLow,
			Description: "Mobile deposit confirmation email renders the amount without cents", Status: models.ErrorStatusNew,
			DateReported: models.MustDate("2026-03-12"),
		},
	}
	for i := range records {
		id, err := s.NextID()
		if err != nil {
			logr.Sugar().Fatalw("allocate error id failed", "error", err)
		}
		records[i].ID = id
		if err := s.Append(records[i]); err != nil {
			logr.Sugar().Fatalw("append error failed", "id", id, "error", err)
		}
	}
	logr.Info("errors seeded", zap.Int("rows", len(records)))
}

func seedProjects(logr *zap.Logger, s *store.ProjectStore) {
	existing, err := s.Load()
	if err != nil {
		logr.Sugar().Fatalw("load projects failed", "error", err)
	}
	if len(existing) > 0 {
		logr.Info("projects table already populated, skipping", zap.Int("rows", len(existing)))
		return
	}

	records := []models.Project{
		{
			Name: "Core conversion toolkit", Description: "Utilities and validation reports supporting the core conversion",
			Status: models.ProjectStatusDeployed, StartDate: models.MustDate("2025-09-01"),
			TargetCompletion: models.MustDate("2026-01-31"), ActualCompletion: models.MustDate("2026-01-28"),
			TeamMembers: []string{"Marcus Lee", "Priya Nair", "Sofia Petrov"},
			Checklist:   checklistThrough(5), LinkedRequests: []string{"REQ-001"},
		},
		{
			Name: "ACH automation suite", Description: "End-to-end automation of inbound and outbound ACH file handling",
			Status: models.ProjectStatusInProgress, StartDate: models.MustDate("2026-01-15"),
			TargetCompletion: models.MustDate("2026-06-30"),
			TeamMembers:      []string{"Priya Nair", "Marcus Lee"},
			Checklist:        checklistThrough(3), LinkedRequests: []string{"REQ-004"},
		},
		{
			Name: "Statement archive viewer", Description: "Internal lookup tool over the imaged statement archive",
			Status: models.ProjectStatusTesting, StartDate: models.MustDate("2026-01-20"),
			TargetCompletion: models.MustDate("2026-04-30"),
			TeamMembers:      []string{"Sofia Petrov"},
			Checklist:        checklistThrough(3),
		},
		{
			Name: "Wire room dashboard", Description: "Same-day wire totals, cutoffs and exception queue in one screen",
			Status: models.ProjectStatusPlanning, StartDate: models.MustDate("2026-03-01"),
			TargetCompletion: models.MustDate("2026-08-31"),
			TeamMembers:      []string{"Marcus Lee", "Janet Okafor"},
			Checklist:        checklistThrough(0), LinkedRequests: []string{"REQ-008"},
		},
		{
			Name: "Branch key metrics feed", Description: "Daily extract of branch KPIs for the executive scorecard",
			Status: models.ProjectStatusOnHold, StartDate: models.MustDate("2026-02-05"),
			TargetCompletion: models.MustDate("2026-07-31"),
			TeamMembers:      []string{"Sofia Petrov", "Priya Nair"},
			Checklist:        checklistThrough(2),
		},
	}
	for i := range records {
		id, err := s.NextID()
		if err != nil {
			logr.Sugar().Fatalw("allocate project id failed", "error", err)
		}
		records[i].ID = id
		if err := s.Append(records[i]); err != nil {
			logr.Sugar().Fatalw("append project failed", "id", id, "error", err)
		}
	}
	logr.Info("projects seeded", zap.Int("rows", len(records)))
}

func checklistThrough(n int) models.Checklist {
	c := models.NewChecklist()
	c.CompleteThrough(n)
	return c
}
