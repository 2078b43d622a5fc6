package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"github.com/lokita-bj/lokita-backend/internal/sms"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMessage struct {
	To      string
	Message string
}

// mockGateway records every message instead of dispatching it.
type mockGateway struct {
	sent []sentMessage
	fail bool
}

func (g *mockGateway) Send(to, message string) (*sms.Result, error) {
	if g.fail {
		return nil, errors.New("gateway unavailable")
	}
	g.sent = append(g.sent, sentMessage{To: to, Message: message})
	return &sms.Result{Success: true, MessageID: uuid.NewString()}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.OtpCode{},
		&models.Hospital{},
		&models.Specialty{},
		&models.HospitalSpecialty{},
		&models.Appointment{},
		&models.Notification{},
		&models.AuditLog{},
	))

	return db
}

func newTestTokenService(t *testing.T, expiresIn time.Duration) *TokenService {
	t.Helper()

	privatePEM, publicPEM := generateTestKeyPair(t)
	tokens, err := NewTokenService(privatePEM, publicPEM, expiresIn)
	require.NoError(t, err)
	return tokens
}

func generateTestKeyPair(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	return string(privatePEM), string(publicPEM)
}

func createTestUser(t *testing.T, db *gorm.DB, phoneNumber, role string, hospitalID *uuid.UUID) *models.User {
	t.Helper()

	user := models.User{
		ID:          uuid.New(),
		PhoneNumber: phoneNumber,
		Role:        role,
		HospitalID:  hospitalID,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestHospital(t *testing.T, db *gorm.DB, name string, approved bool) *models.Hospital {
	t.Helper()

	hospital := models.Hospital{
		ID:         uuid.New(),
		Name:       name,
		Address:    "Rue 12.034",
		District:   "Littoral",
		City:       "Cotonou",
		IsApproved: approved,
	}
	require.NoError(t, db.Create(&hospital).Error)
	return &hospital
}

func createTestAppointment(t *testing.T, db *gorm.DB, patientID, hospitalID uuid.UUID, status string) *models.Appointment {
	t.Helper()

	appointment := models.Appointment{
		ID:            uuid.New(),
		PatientID:     patientID,
		HospitalID:    hospitalID,
		RequestedDate: time.Now().Add(48 * time.Hour),
		RequestedSlot: "MORNING_8_10",
		Reason:        "Consultation",
		Status:        status,
	}
	require.NoError(t, db.Create(&appointment).Error)
	return &appointment
}
