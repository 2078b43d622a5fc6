package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"github.com/lokita-bj/lokita-backend/internal/phone"
	"github.com/lokita-bj/lokita-backend/internal/sms"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCodeInvalid     = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("maximum verification attempts reached")
)

// OTPService issues and verifies one-time SMS passcodes.
type OTPService struct {
	db          *gorm.DB
	tokens      *TokenService
	gateway     sms.Gateway
	audit       *AuditRecorder
	codeLength  int
	expiry      time.Duration
	maxAttempts int
}

func NewOTPService(db *gorm.DB, tokens *TokenService, gateway sms.Gateway, audit *AuditRecorder, codeLength int, expiry time.Duration, maxAttempts int) *OTPService {
	return &OTPService{
		db:          db,
		tokens:      tokens,
		gateway:     gateway,
		audit:       audit,
		codeLength:  codeLength,
		expiry:      expiry,
		maxAttempts: maxAttempts,
	}
}

// RequestCode sends a fresh code to the given number, creating the user on
// first contact. Returns the expiry countdown in seconds.
func (s *OTPService) RequestCode(phoneNumber string, meta RequestMeta) (int, error) {
	normalized, err := phone.Normalize(phoneNumber)
	if err != nil {
		return 0, err
	}

	user, err := s.findOrCreateUser(normalized, "", "")
	if err != nil {
		return 0, err
	}

	// Invalidate every unused code first so at most one code is live.
	if err := s.db.Model(&models.OtpCode{}).
		Where("user_id = ? AND is_used = ?", user.ID, false).
		Update("is_used", true).Error; err != nil {
		return 0, fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return 0, fmt.Errorf("failed to generate code: %w", err)
	}

	otp := models.OtpCode{
		ID:          uuid.New(),
		UserID:      user.ID,
		Code:        code,
		ExpiresAt:   time.Now().Add(s.expiry),
		MaxAttempts: s.maxAttempts,
	}
	if err := s.db.Create(&otp).Error; err != nil {
		return 0, fmt.Errorf("failed to store code: %w", err)
	}

	// Best effort: a failed send is logged, the request still succeeds.
	if _, err := s.gateway.Send(normalized, sms.OTPMessage(code)); err != nil {
		slog.Error("failed to send OTP SMS", "to", phone.Mask(normalized), "error", err)
	}

	s.audit.Record(user.ID, models.ActionSendOTP, "OtpCode", user.ID, nil, nil, meta)

	return int(s.expiry.Seconds()), nil
}

// VerifyCode consumes a valid code and returns a session token for the user.
func (s *OTPService) VerifyCode(phoneNumber, code string, meta RequestMeta) (string, *models.User, error) {
	normalized, err := phone.Normalize(phoneNumber)
	if err != nil {
		return "", nil, err
	}
	code = strings.TrimSpace(code)

	var user models.User
	if err := s.db.Where("phone_number = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	var otp models.OtpCode
	err = s.db.Where("user_id = ? AND code = ? AND is_used = ? AND expires_at >= ?",
		user.ID, code, false, time.Now()).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Bump the attempt counter on every row carrying this code, then
			// reject. The broad match is intentional bookkeeping.
			if err := s.db.Model(&models.OtpCode{}).
				Where("user_id = ? AND code = ?", user.ID, code).
				UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
				slog.Error("failed to record failed attempt", "user_id", user.ID, "error", err)
			}
			return "", nil, ErrCodeInvalid
		}
		return "", nil, fmt.Errorf("failed to look up code: %w", err)
	}

	// Attempts are checked before the code is consumed.
	if otp.Attempts >= otp.MaxAttempts {
		return "", nil, ErrTooManyAttempts
	}

	now := time.Now()
	if err := s.db.Model(&otp).Updates(map[string]interface{}{
		"is_used": true,
		"used_at": now,
	}).Error; err != nil {
		return "", nil, fmt.Errorf("failed to consume code: %w", err)
	}

	if err := s.db.Model(&user).Update("is_phone_verified", true).Error; err != nil {
		return "", nil, fmt.Errorf("failed to mark phone verified: %w", err)
	}
	user.IsPhoneVerified = true

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return "", nil, err
	}

	s.audit.Record(user.ID, models.ActionLogin, "User", user.ID, nil, nil, meta)

	return token, &user, nil
}

// findOrCreateUser returns the user for a normalized number, creating a fresh
// PATIENT record when the number is unseen.
func (s *OTPService) findOrCreateUser(normalized, firstName, lastName string) (*models.User, error) {
	var user models.User
	err := s.db.Where("phone_number = ?", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:          uuid.New(),
			PhoneNumber: normalized,
			FirstName:   firstName,
			LastName:    lastName,
			Role:        models.RolePatient,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *OTPService) generateCode() (string, error) {
	digits := make([]byte, s.codeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
