package circulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"circulate-backend/application/ports"
	"circulate-backend/domain/model"
)

// Sender runs one scheduled send cycle: scan the due aggregates, claim
// them, consolidate per user, build and mail each digest, then clean up
// whatever was delivered. A recipient's failure never blocks the others.
type Sender struct {
	circles      ports.CircleRepository
	content      ports.ContentRepository
	users        ports.UserRepository
	circulations ports.CirculationRepository
	mailer       ports.Mailer
	renderer     ports.DigestRenderer

	fromName     string
	fromAddr     string
	sendLocation *time.Location
	grace        time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// SenderDeps bundles the collaborators of a Sender.
type SenderDeps struct {
	Circles      ports.CircleRepository
	Content      ports.ContentRepository
	Users        ports.UserRepository
	Circulations ports.CirculationRepository
	Mailer       ports.Mailer
	Renderer     ports.DigestRenderer
	FromName     string
	FromAddr     string
	SendLocation *time.Location
	Grace        time.Duration
	Logger       *zap.Logger
}

// NewSender wires a send cycle runner.
func NewSender(deps SenderDeps) *Sender {
	loc := deps.SendLocation
	if loc == nil {
		loc = time.UTC
	}
	return &Sender{
		circles:      deps.Circles,
		content:      deps.Content,
		users:        deps.Users,
		circulations: deps.Circulations,
		mailer:       deps.Mailer,
		renderer:     deps.Renderer,
		fromName:     deps.FromName,
		fromAddr:     deps.FromAddr,
		sendLocation: loc,
		grace:        deps.Grace,
		now:          time.Now,
		logger:       deps.Logger,
	}
}

// Summary reports what one send cycle did.
type Summary struct {
	DueRecords int
	Claimed    int
	Recipients int
	Sent       int
	Skipped    int
	Failed     int
}

// Run executes one send cycle. It returns a non-nil error alongside the
// summary when at least one recipient could not be served, so the
// scheduler retries; already-delivered aggregates are deleted first and
// cannot be sent twice.
func (s *Sender) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	now := s.now().In(s.sendLocation)
	due := DueFrequencies(now)
	s.logger.Info("send cycle starting",
		zap.Time("now", now),
		zap.Any("dueFrequencies", due))

	records, err := s.circulations.ScanDue(ctx, due)
	if err != nil {
		return summary, fmt.Errorf("scan due circulations: %w", err)
	}
	summary.DueRecords = len(records)
	if len(records) == 0 {
		s.logger.Info("nothing due, send cycle done")
		return summary, nil
	}

	dispatchID := uuid.New().String()
	claimed := make([]*model.UpcomingCirculation, 0, len(records))
	urnsByUser := make(map[string][]string)
	pendingCircles := make(map[string]bool)
	for _, rec := range records {
		ok, err := s.circulations.Claim(ctx, rec.Urn, dispatchID, s.now(), s.grace)
		if err != nil {
			s.logger.Error("failed to claim circulation", zap.String("urn", rec.Urn), zap.Error(err))
			markPending(pendingCircles, rec)
			continue
		}
		if !ok {
			s.logger.Info("circulation already claimed, skipping", zap.String("urn", rec.Urn))
			markPending(pendingCircles, rec)
			continue
		}
		claimed = append(claimed, rec)
		urnsByUser[rec.UserID] = append(urnsByUser[rec.UserID], rec.Urn)
	}
	summary.Claimed = len(claimed)
	if len(claimed) == 0 {
		s.logger.Info("no circulations claimed, send cycle done")
		return summary, nil
	}

	consolidated := model.Consolidate(claimed)
	summary.Recipients = len(consolidated)

	circles, content, users, err := s.resolve(ctx, consolidated)
	if err != nil {
		return summary, err
	}
	if len(circles) == 0 || len(content) == 0 || len(users) == 0 {
		s.logger.Warn("nothing resolved for claimed circulations, aborting cycle",
			zap.Int("circles", len(circles)),
			zap.Int("content", len(content)),
			zap.Int("users", len(users)))
		return summary, nil
	}

	succeeded := make(map[string]bool, len(consolidated))
	for _, rec := range consolidated {
		outcome := s.sendOne(ctx, rec, circles, content, users)
		switch outcome {
		case outcomeSent:
			summary.Sent++
			succeeded[rec.UserID] = true
		case outcomeSkipped:
			summary.Skipped++
			succeeded[rec.UserID] = true
		case outcomeFailed:
			summary.Failed++
		}
	}

	s.cleanup(ctx, consolidated, circles, urnsByUser, succeeded, pendingCircles)

	s.logger.Info("send cycle done",
		zap.Int("due", summary.DueRecords),
		zap.Int("claimed", summary.Claimed),
		zap.Int("recipients", summary.Recipients),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if summary.Failed > 0 {
		return summary, fmt.Errorf("send cycle: %d of %d recipients failed", summary.Failed, summary.Recipients)
	}
	return summary, nil
}

// resolve batch-loads every circle, content item and user the consolidated
// records reference, plus the content creators.
func (s *Sender) resolve(ctx context.Context, consolidated []*model.UpcomingCirculation) (
	map[string]*model.Circle, map[string]*model.Content, map[string]*model.User, error,
) {
	circleIDs := make([]string, 0)
	for _, rec := range consolidated {
		circleIDs = append(circleIDs, rec.Circles...)
	}
	circles, err := s.circles.BatchGetByIDs(ctx, dedupe(circleIDs))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve circles: %w", err)
	}

	contentIDs := make([]string, 0)
	for _, circle := range circles {
		contentIDs = append(contentIDs, circle.UpcomingContentIDs...)
	}
	content, err := s.content.BatchGetByIDs(ctx, dedupe(contentIDs))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve content: %w", err)
	}

	userIDs := make([]string, 0, len(consolidated))
	for _, rec := range consolidated {
		userIDs = append(userIDs, rec.UserID)
	}
	for _, item := range content {
		userIDs = append(userIDs, item.CreatedBy)
	}
	users, err := s.users.BatchGetByIDs(ctx, dedupe(userIDs))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve users: %w", err)
	}

	return circles, content, users, nil
}

type sendOutcome int

const (
	outcomeSent sendOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// sendOne builds, renders and mails a single recipient's digest. Digests
// with nothing to show are skipped but still count as served, so their
// aggregates get cleaned up instead of lingering. A recipient whose user
// record is gone is treated the same way.
func (s *Sender) sendOne(
	ctx context.Context,
	rec *model.UpcomingCirculation,
	circles map[string]*model.Circle,
	content map[string]*model.Content,
	users map[string]*model.User,
) sendOutcome {
	user, ok := users[rec.UserID]
	if !ok {
		s.logger.Warn("recipient user record gone, dropping circulation", zap.String("userId", rec.UserID))
		return outcomeSkipped
	}

	digest := model.BuildDigest(rec, circles, content, users, user.Location())
	if digest.Empty() {
		s.logger.Info("digest empty, nothing to send", zap.String("userId", rec.UserID))
		return outcomeSkipped
	}

	html, err := s.renderer.Render(user.FirstName, digest)
	if err != nil {
		s.logger.Error("failed to render digest",
			zap.String("userId", rec.UserID),
			zap.Error(err))
		return outcomeFailed
	}

	msg := ports.MailMessage{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromAddr),
		To:      user.Email,
		Subject: fmt.Sprintf("Your Circulate digest for %s", s.now().In(user.Location()).Format("Monday, January 2")),
		HTML:    html,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send digest",
			zap.String("userId", rec.UserID),
			zap.Error(err))
		return outcomeFailed
	}

	s.logger.Info("digest sent", zap.String("userId", rec.UserID), zap.String("email", user.Email))
	return outcomeSent
}

// markPending records the circles of a due record this run did not claim.
// Their upcoming-content lists must survive the cycle so the run holding
// the claim (or its retry) still finds the content.
func markPending(pending map[string]bool, rec *model.UpcomingCirculation) {
	for _, circleID := range rec.Circles {
		pending[circleID] = true
	}
}

// cleanup deletes the source aggregates of every served recipient, then
// clears the upcoming-content list of each circle all of whose recipients
// were served. Circles with a failed recipient, or referenced by a record
// another run holds, keep their list so a later cycle retries them.
func (s *Sender) cleanup(
	ctx context.Context,
	consolidated []*model.UpcomingCirculation,
	circles map[string]*model.Circle,
	urnsByUser map[string][]string,
	succeeded map[string]bool,
	pendingCircles map[string]bool,
) {
	urns := make([]string, 0)
	for userID, ok := range succeeded {
		if ok {
			urns = append(urns, urnsByUser[userID]...)
		}
	}
	if len(urns) > 0 {
		if err := s.circulations.BatchDelete(ctx, urns); err != nil {
			s.logger.Error("failed to delete served circulations", zap.Error(err))
		}
	}

	circleServed := make(map[string]bool)
	for _, rec := range consolidated {
		for _, circleID := range rec.Circles {
			if _, known := circles[circleID]; !known {
				continue
			}
			if done, seen := circleServed[circleID]; !seen {
				circleServed[circleID] = succeeded[rec.UserID]
			} else {
				circleServed[circleID] = done && succeeded[rec.UserID]
			}
		}
	}
	var wg sync.WaitGroup
	for circleID, done := range circleServed {
		if !done || pendingCircles[circleID] {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.circles.ClearUpcomingContent(ctx, id); err != nil {
				s.logger.Error("failed to clear upcoming content",
					zap.String("circleId", id),
					zap.Error(err))
			}
		}(circleID)
	}
	wg.Wait()
}
