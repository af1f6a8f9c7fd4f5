package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"interlinear/internal/domain"
	"interlinear/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// LinkCodeLength is the number of characters in a link code
	LinkCodeLength = 8
	// DefaultLinkCodeTTL is how long a link code stays redeemable
	DefaultLinkCodeTTL = 15 * time.Minute

	// excludes 0, O, 1 and I
	linkCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// LinkService links Telegram accounts to owners
type LinkService struct {
	linkRepo repository.LinkRepository
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewLinkService creates a new link service
func NewLinkService(linkRepo repository.LinkRepository, ttl time.Duration, logger *zap.Logger) *LinkService {
	if ttl <= 0 {
		ttl = DefaultLinkCodeTTL
	}
	return &LinkService{
		linkRepo: linkRepo,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// IssueCode creates a one-time code the owner can send to the bot
func (s *LinkService) IssueCode(ctx context.Context, ownerID uuid.UUID) (*domain.LinkCode, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}

	code, err := newLinkCode()
	if err != nil {
		return nil, fmt.Errorf("generate link code: %w", err)
	}

	linkCode := domain.LinkCode{
		Code:      code,
		OwnerID:   ownerID,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.linkRepo.SaveCode(ctx, linkCode); err != nil {
		return nil, err
	}

	s.logger.Info("Link code issued", zap.String("owner_id", ownerID.String()), zap.Time("expires_at", linkCode.ExpiresAt))
	return &linkCode, nil
}

// Redeem consumes code and links the Telegram user to its owner
func (s *LinkService) Redeem(ctx context.Context, code string, telegramUserID int64) (uuid.UUID, error) {
	code = NormalizeLinkCode(code)
	if len(code) != LinkCodeLength {
		return uuid.Nil, domain.ErrLinkCodeInvalid
	}

	ownerID, err := s.linkRepo.RedeemCode(ctx, code, telegramUserID, s.now())
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("Telegram account linked",
		zap.Int64("telegram_user_id", telegramUserID),
		zap.String("owner_id", ownerID.String()))
	return ownerID, nil
}

// OwnerFor returns the owner linked to the Telegram user
func (s *LinkService) OwnerFor(ctx context.Context, telegramUserID int64) (uuid.UUID, bool, error) {
	return s.linkRepo.OwnerOf(ctx, telegramUserID)
}

// Unlink removes the Telegram user's link
func (s *LinkService) Unlink(ctx context.Context, telegramUserID int64) error {
	return s.linkRepo.Unlink(ctx, telegramUserID)
}

// NormalizeLinkCode strips whitespace and dashes and upper-cases the code
func NormalizeLinkCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer(" ", "", "-", "").Replace(code)
}

func newLinkCode() (string, error) {
	buf := make([]byte, LinkCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = linkCodeAlphabet[int(b)%len(linkCodeAlphabet)]
	}
	return string(buf), nil
}
