package routes

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/handlers"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"github.com/lokita-bj/lokita-backend/internal/services"
	"github.com/lokita-bj/lokita-backend/internal/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingGateway struct {
	sent []string
}

func (g *recordingGateway) Send(to, message string) (*sms.Result, error) {
	g.sent = append(g.sent, message)
	return &sms.Result{Success: true}, nil
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	tokens  *services.TokenService
	gateway *recordingGateway
}

func newTestEnv(t *testing.T) *testEnv {
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

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	tokens, err := services.NewTokenService(string(privatePEM), string(publicPEM), 168*time.Hour)
	require.NoError(t, err)

	gateway := &recordingGateway{}
	audit := services.NewAuditRecorder(db)
	otpService := services.NewOTPService(db, tokens, gateway, audit, 6, 3*time.Minute, 3)
	appointmentService := services.NewAppointmentService(db, gateway, audit, 3)
	hospitalService := services.NewHospitalService(db, audit)

	app := fiber.New()
	Setup(app, db, tokens,
		handlers.NewAuthHandler(otpService),
		handlers.NewAppointmentHandler(appointmentService),
		handlers.NewHospitalHandler(hospitalService),
		handlers.NewAdminHandler(hospitalService),
		handlers.NewHealthHandler(),
	)

	return &testEnv{app: app, db: db, tokens: tokens, gateway: gateway}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	require.NoError(t, resp.Body.Close())
}

func (e *testEnv) createHospital(t *testing.T, name string, approved bool) *models.Hospital {
	t.Helper()
	hospital := models.Hospital{
		ID: uuid.New(), Name: name, District: "Littoral", City: "Cotonou", IsApproved: approved,
	}
	require.NoError(t, e.db.Create(&hospital).Error)
	return &hospital
}

func (e *testEnv) createStaff(t *testing.T, phoneNumber, role string, hospitalID *uuid.UUID) (*models.User, string) {
	t.Helper()
	user := models.User{
		ID: uuid.New(), PhoneNumber: phoneNumber, Role: role, HospitalID: hospitalID, IsPhoneVerified: true,
	}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := e.tokens.Issue(&user)
	require.NoError(t, err)
	return &user, token
}

// liveCode reads the code the gateway would have delivered.
func (e *testEnv) liveCode(t *testing.T, phoneNumber string) string {
	t.Helper()
	var user models.User
	require.NoError(t, e.db.Where("phone_number = ?", phoneNumber).First(&user).Error)
	var otp models.OtpCode
	require.NoError(t, e.db.Where("user_id = ? AND is_used = ?", user.ID, false).
		Order("created_at DESC").First(&otp).Error)
	return otp.Code
}

func TestLoginAndBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.createHospital(t, "CNHU-HKM", true)

	// Request a login code.
	resp := env.request(t, fiber.MethodPost, "/api/auth/send-otp", "",
		fiber.Map{"phoneNumber": "+22961234567"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sendBody struct {
		Success   bool `json:"success"`
		ExpiresIn int  `json:"expiresIn"`
	}
	decodeBody(t, resp, &sendBody)
	assert.True(t, sendBody.Success)
	assert.Equal(t, 180, sendBody.ExpiresIn)
	assert.Len(t, env.gateway.sent, 1)

	// A wrong code is rejected.
	code := env.liveCode(t, "+22961234567")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	resp = env.request(t, fiber.MethodPost, "/api/auth/verify-otp", "",
		fiber.Map{"phoneNumber": "+22961234567", "code": wrong})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// The right one yields a session token.
	resp = env.request(t, fiber.MethodPost, "/api/auth/verify-otp", "",
		fiber.Map{"phoneNumber": "+22961234567", "code": code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var verifyBody struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Role            string `json:"role"`
			IsPhoneVerified bool   `json:"isPhoneVerified"`
		} `json:"user"`
	}
	decodeBody(t, resp, &verifyBody)
	require.NotEmpty(t, verifyBody.Token)
	assert.Equal(t, models.RolePatient, verifyBody.User.Role)
	assert.True(t, verifyBody.User.IsPhoneVerified)

	// Book an appointment with the session.
	resp = env.request(t, fiber.MethodPost, "/api/appointments/", verifyBody.Token, fiber.Map{
		"hospitalId":    hospital.ID.String(),
		"requestedDate": time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		"requestedSlot": "MORNING_8_10",
		"reason":        "Consultation générale",
		"phoneNumber":   "+22961234567",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var appointment models.Appointment
	decodeBody(t, resp, &appointment)
	assert.Equal(t, models.StatusPending, appointment.Status)

	// Exactly one notification and one audit entry for the booking.
	var notifications, audits int64
	require.NoError(t, env.db.Model(&models.Notification{}).
		Where("appointment_id = ?", appointment.ID).Count(&notifications).Error)
	assert.EqualValues(t, 1, notifications)
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("action = ? AND entity_id = ?", models.ActionCreateAppointment, appointment.ID).
		Count(&audits).Error)
	assert.EqualValues(t, 1, audits)

	// The patient sees it in their list.
	resp = env.request(t, fiber.MethodGet, "/api/appointments/", verifyBody.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var mine []models.Appointment
	decodeBody(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, appointment.ID, mine[0].ID)
}

func TestAnonymousBooking(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.createHospital(t, "CNHU-HKM", true)

	body := fiber.Map{
		"hospitalId":    hospital.ID.String(),
		"requestedDate": time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		"requestedSlot": "AFTERNOON_14_16",
		"reason":        "Suivi post-opératoire",
		"phoneNumber":   "+229 97 12 34 56",
		"firstName":     "Ayaba",
		"lastName":      "Houngbo",
	}

	// No token at all.
	resp := env.request(t, fiber.MethodPost, "/api/appointments/", "", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var appointment models.Appointment
	decodeBody(t, resp, &appointment)

	// The patient was created from the normalized number.
	var patient models.User
	require.NoError(t, env.db.Where("phone_number = ?", "+22997123456").First(&patient).Error)
	assert.Equal(t, "Ayaba", patient.FirstName)

	// A garbage bearer token degrades to the same anonymous path.
	resp = env.request(t, fiber.MethodGet, "/api/appointments/"+appointment.ID.String(), "not.a.token", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListMineRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodGet, "/api/appointments/", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSecretaryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.createHospital(t, "CNHU-HKM", true)
	other := env.createHospital(t, "Hopital Saint-Luc", true)

	patient, _ := env.createStaff(t, "+22961234567", models.RolePatient, nil)
	_, secretaryToken := env.createStaff(t, "+22997000010", models.RoleSecretary, &hospital.ID)
	_, otherToken := env.createStaff(t, "+22997000011", models.RoleSecretary, &other.ID)

	appointment := models.Appointment{
		ID: uuid.New(), PatientID: patient.ID, HospitalID: hospital.ID,
		RequestedDate: time.Now().Add(48 * time.Hour),
		RequestedSlot: "MORNING_8_10", Reason: "Consultation",
		Status: models.StatusPending,
	}
	require.NoError(t, env.db.Create(&appointment).Error)

	// The queue requires a secretary token.
	resp := env.request(t, fiber.MethodGet, "/api/secretary/appointments", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/api/secretary/appointments", secretaryToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var queue []models.Appointment
	decodeBody(t, resp, &queue)
	require.Len(t, queue, 1)

	// A secretary of another hospital cannot confirm it.
	confirmBody := fiber.Map{"confirmedDate": time.Now().Add(72 * time.Hour).Format(time.RFC3339)}
	resp = env.request(t, fiber.MethodPost,
		"/api/secretary/appointments/"+appointment.ID.String()+"/confirm", otherToken, confirmBody)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The right secretary can.
	resp = env.request(t, fiber.MethodPost,
		"/api/secretary/appointments/"+appointment.ID.String()+"/confirm", secretaryToken, confirmBody)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var confirmed models.Appointment
	decodeBody(t, resp, &confirmed)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	// Confirming again is refused.
	resp = env.request(t, fiber.MethodPost,
		"/api/secretary/appointments/"+appointment.ID.String()+"/confirm", secretaryToken, confirmBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRoleSeparation(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.createHospital(t, "CNHU-HKM", true)

	_, patientToken := env.createStaff(t, "+22961234567", models.RolePatient, nil)
	_, doctorToken := env.createStaff(t, "+22997000020", models.RoleDoctor, &hospital.ID)

	// A patient token on a staff route is forbidden, not unauthorized.
	resp := env.request(t, fiber.MethodGet, "/api/secretary/appointments", patientToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// A doctor is not a secretary.
	resp = env.request(t, fiber.MethodGet, "/api/secretary/appointments", doctorToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Doctor routes work for doctors.
	resp = env.request(t, fiber.MethodGet, "/api/doctor/appointments/today", doctorToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminHospitalApproval(t *testing.T) {
	env := newTestEnv(t)
	pending := env.createHospital(t, "Clinique en attente", false)
	_, adminToken := env.createStaff(t, "+22997000099", models.RoleSuperAdmin, nil)

	// Unapproved hospitals are invisible to the public listing.
	resp := env.request(t, fiber.MethodGet, "/api/hospitals", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listing struct {
		Success   bool              `json:"success"`
		Hospitals []models.Hospital `json:"hospitals"`
	}
	decodeBody(t, resp, &listing)
	assert.Empty(t, listing.Hospitals)

	// But the admin sees them.
	resp = env.request(t, fiber.MethodGet, "/api/admin/hospitals", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var all []models.Hospital
	decodeBody(t, resp, &all)
	require.Len(t, all, 1)

	// Approval makes the hospital public.
	resp = env.request(t, fiber.MethodPost,
		"/api/admin/hospitals/"+pending.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/api/hospitals", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &listing)
	require.Len(t, listing.Hospitals, 1)
	assert.True(t, listing.Hospitals[0].IsApproved)
}

func TestAdminRejectWithActiveAppointments(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.createHospital(t, "CNHU-HKM", true)
	patient, _ := env.createStaff(t, "+22961234567", models.RolePatient, nil)
	_, adminToken := env.createStaff(t, "+22997000099", models.RoleSuperAdmin, nil)

	appointment := models.Appointment{
		ID: uuid.New(), PatientID: patient.ID, HospitalID: hospital.ID,
		RequestedDate: time.Now().Add(48 * time.Hour),
		RequestedSlot: "MORNING_8_10", Reason: "Consultation",
		Status: models.StatusPending,
	}
	require.NoError(t, env.db.Create(&appointment).Error)

	resp := env.request(t, fiber.MethodPost,
		"/api/admin/hospitals/"+hospital.ID.String()+"/reject", adminToken, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var count int64
	require.NoError(t, env.db.Model(&models.Hospital{}).Where("id = ?", hospital.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
}
