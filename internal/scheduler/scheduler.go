package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"medidocs/internal/config"
	"medidocs/internal/email"
	"medidocs/internal/models"
	"medidocs/internal/service"
)

// ChainVerifier walks the audit trail of every document
type ChainVerifier interface {
	DocumentIDs(ctx context.Context) ([]string, error)
	VerifyChain(ctx context.Context, documentID string) (bool, []string, error)
}

// SubmissionLister lists every submission
type SubmissionLister interface {
	List(ctx context.Context) ([]models.Submission, error)
}

// Directory resolves users for digests and alerts
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.DirectoryUser, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.DirectoryUser, error)
}

// Mailer sends the scheduled mails
type Mailer interface {
	SendPendingDigest(to, name string, items []email.PendingItem) error
	SendHashChainAlert(to, adminName string, total, valid int, brokenDocuments, errors []string) error
}

// Scheduler handles periodic tasks
type Scheduler struct {
	audit       ChainVerifier
	submissions SubmissionLister
	directory   Directory
	mailer      Mailer
	config      *config.SchedulerConfig
	now         func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler. A nil mailer disables digests and alert mails.
func NewScheduler(
	audit ChainVerifier,
	submissions SubmissionLister,
	directory Directory,
	mailer Mailer,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		audit:       audit,
		submissions: submissions,
		directory:   directory,
		mailer:      mailer,
		config:      cfg,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"chain_validation_enabled", s.config.EnableChainValidation,
		"pending_digest_enabled", s.config.EnablePendingDigest)

	if s.config.EnableChainValidation {
		if err := s.startCronTask(s.config.ChainValidationCron, "chain_validation", s.ValidateAuditChains); err != nil {
			slog.Error("Failed to start chain validation", "error", err)
		}
	}

	if s.config.EnablePendingDigest {
		if err := s.startCronTask(s.config.PendingDigestCron, "pending_digest", s.SendPendingDigests); err != nil {
			slog.Error("Failed to start pending digest", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running tasks to return
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		slog.Info("Stopping scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// schedule describes when a task runs next
type schedule func(from time.Time) time.Time

// parseCron understands the subset "minute hour * * weekday" with */n in the
// minute or hour field. Examples: "0 2 * * *" daily 2 AM, "0 8 * * 1" Monday 8 AM,
// "*/5 * * * *" every 5 minutes, "30 */6 * * *" every 6 hours at :30.
func parseCron(cronExpr string) (schedule, error) {
	parts := strings.Fields(cronExpr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid cron expression: %s (expected 5 fields)", cronExpr)
	}

	if strings.HasPrefix(parts[0], "*/") {
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return nil, fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		every := time.Duration(interval) * time.Minute
		return func(from time.Time) time.Time { return from.Truncate(time.Minute).Add(every) }, nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	if strings.HasPrefix(parts[1], "*/") {
		interval, err := strconv.Atoi(parts[1][2:])
		if err != nil || interval < 1 || interval > 23 {
			return nil, fmt.Errorf("invalid hour interval in cron: %s", parts[1])
		}
		return func(from time.Time) time.Time { return nextHourlyInterval(from, interval, minute) }, nil
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	if parts[4] == "*" {
		return func(from time.Time) time.Time { return nextDailyRun(from, hour, minute) }, nil
	}

	weekday, err := strconv.Atoi(parts[4])
	if err != nil || weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("invalid weekday in cron: %s (0-6, 0=Sunday)", parts[4])
	}
	return func(from time.Time) time.Time {
		return nextWeekday(from, time.Weekday(weekday), hour, minute)
	}, nil
}

func (s *Scheduler) startCronTask(cronExpr, taskName string, task func(ctx context.Context)) error {
	next, err := parseCron(cronExpr)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(taskName, next, task)
	}()
	return nil
}

func (s *Scheduler) run(taskName string, next schedule, task func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	for {
		now := s.now()
		at := next(now)
		slog.Info("Next task scheduled", "task", taskName, "next_run", at.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(at.Sub(now))
		select {
		case <-timer.C:
			slog.Info("Running scheduled task", "task", taskName)
			task(ctx)
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// nextHourlyInterval calculates the next run time for hourly intervals
func nextHourlyInterval(from time.Time, hourInterval, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	for next.Hour()%hourInterval != 0 {
		next = next.Add(time.Hour)
	}
	return next
}

// nextWeekday calculates the next occurrence of a specific weekday and time
func nextWeekday(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	daysUntil := int(weekday - from.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}
	next = next.AddDate(0, 0, daysUntil)

	if !next.After(from) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// nextDailyRun calculates the next daily run time
func nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ValidateAuditChains verifies every document's audit chain and alerts admins on breaks
func (s *Scheduler) ValidateAuditChains(ctx context.Context) {
	slog.Info("Starting audit chain validation")

	documentIDs, err := s.audit.DocumentIDs(ctx)
	if err != nil {
		slog.Error("Failed to list documents for chain validation", "error", err)
		return
	}
	if len(documentIDs) == 0 {
		slog.Info("No audit chains to validate")
		return
	}

	var broken []string
	var allErrors []string
	valid := 0

	for _, documentID := range documentIDs {
		ok, problems, err := s.audit.VerifyChain(ctx, documentID)
		if err != nil {
			slog.Error("Audit chain validation error", "document_id", documentID, "error", err)
			broken = append(broken, documentID)
			allErrors = append(allErrors, fmt.Sprintf("Document %s: %v", documentID, err))
			continue
		}
		if !ok {
			slog.Warn("Audit chain validation failed", "document_id", documentID, "errors", problems)
			broken = append(broken, documentID)
			for _, p := range problems {
				allErrors = append(allErrors, fmt.Sprintf("Document %s: %s", documentID, p))
			}
			continue
		}
		valid++
	}

	slog.Info("Audit chain validation completed",
		"total_documents", len(documentIDs),
		"valid_documents", valid,
		"broken_documents", len(broken),
	)

	if len(broken) > 0 {
		if err := s.sendChainAlert(ctx, len(documentIDs), valid, broken, allErrors); err != nil {
			slog.Error("Failed to send chain alert", "error", err)
		}
	}
}

type alertRecipient struct {
	email string
	name  string
}

// sendChainAlert mails the configured alert addresses, or every active admin when none are set
func (s *Scheduler) sendChainAlert(ctx context.Context, total, valid int, broken, errs []string) error {
	if s.mailer == nil {
		slog.Warn("Email is disabled, chain alert not sent", "broken_documents", len(broken))
		return nil
	}

	var recipients []alertRecipient
	for _, addr := range s.config.AlertEmails {
		recipients = append(recipients, alertRecipient{email: addr, name: "Administrator"})
	}

	if len(recipients) == 0 {
		for _, role := range []models.Role{models.RoleSuperAdmin, models.RoleAdmin} {
			admins, err := s.directory.ListByRole(ctx, role)
			if err != nil {
				return fmt.Errorf("failed to get %s users: %w", role, err)
			}
			for _, a := range admins {
				if a.Email != "" {
					recipients = append(recipients, alertRecipient{email: a.Email, name: a.DisplayName})
				}
			}
		}
	}

	if len(recipients) == 0 {
		slog.Warn("No admin users found to send chain alert")
		return nil
	}

	sent := 0
	for _, r := range recipients {
		if err := s.mailer.SendHashChainAlert(r.email, r.name, total, valid, broken, errs); err != nil {
			slog.Error("Failed to send chain alert", "email", r.email, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Chain alerts completed", "alerts_sent", sent)
	return nil
}

// SendPendingDigests mails each reviewer the submissions still awaiting their decision
func (s *Scheduler) SendPendingDigests(ctx context.Context) {
	if s.mailer == nil {
		slog.Warn("Email is disabled, skipping pending digests")
		return
	}
	slog.Info("Sending pending digests")

	subs, err := s.submissions.List(ctx)
	if err != nil {
		slog.Error("Failed to list submissions for digest", "error", err)
		return
	}

	now := s.now()
	byReviewer := make(map[string][]email.PendingItem)
	for _, sub := range subs {
		if !service.AwaitsDecision(sub) {
			continue
		}
		waitingSince := sub.SubmittedAt
		if sub.ForwardedAt != nil {
			waitingSince = *sub.ForwardedAt
		}
		byReviewer[sub.ToUserID] = append(byReviewer[sub.ToUserID], email.PendingItem{
			ID:          sub.ID,
			Title:       sub.Title,
			FromName:    sub.FromUserName,
			Status:      string(sub.Status),
			DaysWaiting: int(now.Sub(waitingSince).Hours() / 24),
		})
	}

	reviewerIDs := make([]string, 0, len(byReviewer))
	for id := range byReviewer {
		reviewerIDs = append(reviewerIDs, id)
	}
	sort.Strings(reviewerIDs)

	sent := 0
	for _, id := range reviewerIDs {
		reviewer, err := s.directory.GetUser(ctx, id)
		if err != nil {
			slog.Error("Failed to get reviewer", "user_id", id, "error", err)
			continue
		}
		if reviewer == nil || !reviewer.IsActive || reviewer.Email == "" {
			continue
		}

		items := byReviewer[id]
		sort.Slice(items, func(i, j int) bool { return items[i].DaysWaiting > items[j].DaysWaiting })

		if err := s.mailer.SendPendingDigest(reviewer.Email, reviewer.DisplayName, items); err != nil {
			slog.Error("Failed to send pending digest", "user_id", id, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Pending digests completed", "digests_sent", sent, "reviewers", len(reviewerIDs))
}
