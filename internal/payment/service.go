package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Store interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetEnrollment(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	FirstEnrollmentAt(ctx context.Context, studentID uint) (*time.Time, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	SavePayment(ctx context.Context, p *models.Payment) error
	WithTx(ctx context.Context, fn func(tx *storage.Service) error) error
}

// Emailer queues a confirmation email.
type Emailer interface {
	Email(ctx context.Context, u *models.User, subject, text string)
}

type Service struct {
	store    Store
	gateway  Gateway
	mail     Emailer
	currency string
	now      func() time.Time
	log      logging.Logger
}

func NewService(store Store, gateway Gateway, mail Emailer, currency string, log logging.Logger) *Service {
	if currency == "" {
		currency = config.DefaultCurrency
	}
	return &Service{store: store, gateway: gateway, mail: mail, currency: currency, now: time.Now, log: log}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Quote prices courseID for the calling student.
func (s *Service) Quote(ctx context.Context, caller auth.Identity, courseID uint) (*models.Course, Quote, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, Quote{}, err
	}
	enrolled := false
	if _, err := s.store.GetEnrollment(ctx, caller.UserID, course.ID); err == nil {
		enrolled = true
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, Quote{}, err
	}
	first, err := s.store.FirstEnrollmentAt(ctx, caller.UserID)
	if err != nil {
		return nil, Quote{}, err
	}
	return course, FinalPrice(s.now(), course.PriceCents, enrolled, first), nil
}

// Checkout is returned to the client to open the gateway's payment page.
type Checkout struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	CourseTitle string `json:"course_title"`
	Quote       Quote  `json:"quote"`
	Order
}

// CreateOrder prices the course, opens a gateway order and records a pending payment.
func (s *Service) CreateOrder(ctx context.Context, caller auth.Identity, courseID uint) (*Checkout, error) {
	if caller.Role != models.RoleStudent {
		return nil, apperror.Forbidden("only students can buy courses")
	}
	course, quote, err := s.Quote(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}
	if quote.FinalCents <= 0 {
		return nil, apperror.Invalid("price calculation failed")
	}
	student, err := s.store.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	orderID := "order-" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		OrderID:       orderID,
		AmountCents:   quote.FinalCents,
		Currency:      s.currency,
		CourseID:      course.ID,
		CourseTitle:   course.Title,
		CustomerName:  student.Username,
		CustomerEmail: student.Email,
	})
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		StudentID:   student.ID,
		CourseID:    course.ID,
		AmountCents: quote.FinalCents,
		Currency:    s.currency,
		OrderID:     orderID,
		Status:      models.PaymentPending,
	}
	if err := s.store.CreatePayment(ctx, p); err != nil {
		s.log.Error("payment: gateway order %s opened but not stored: %v", orderID, err)
		return nil, fmt.Errorf("payment: store order %s: %w", orderID, err)
	}
	s.log.Info("payment: order %s for course %d opened by user %d (%d %s)", orderID, course.ID, student.ID, quote.FinalCents, s.currency)

	return &Checkout{
		OrderID:     orderID,
		Amount:      quote.FinalCents,
		Currency:    s.currency,
		CourseTitle: course.Title,
		Quote:       quote,
		Order:       *order,
	}, nil
}

type VerifyResult struct {
	OrderID   string               `json:"order_id"`
	Status    models.PaymentStatus `json:"status"`
	CourseID  uint                 `json:"course_id"`
	Enrolled  bool                 `json:"enrolled"`
	ExpiresOn *time.Time           `json:"expires_on,omitempty"`
}

// Verify applies a gateway notification. The order is strict: verify the signature,
// persist the payment outcome, enroll, then notify. Persisting and enrolling share one
// transaction so a payment is never marked successful without its enrollment.
func (s *Service) Verify(ctx context.Context, n Notification) (*VerifyResult, error) {
	if !s.gateway.VerifySignature(n) {
		return nil, apperror.Invalid("payment signature verification failed")
	}
	p, err := s.store.GetPaymentByOrderID(ctx, n.OrderID)
	if err != nil {
		return nil, err
	}
	if !grossMatches(n.GrossAmount, p.AmountCents) {
		return nil, apperror.Invalid("gross amount does not match order")
	}

	res := &VerifyResult{OrderID: p.OrderID, CourseID: p.CourseID}
	if p.Status == models.PaymentSuccess {
		// gateways resend notifications; the first one already enrolled the student
		res.Status = p.Status
		res.Enrolled = true
		return res, nil
	}

	status := StatusOf(n)
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("payment: encode notification: %w", err)
	}
	p.Status = status
	p.GatewayPayload = datatypes.JSON(payload)
	if n.TransactionID != "" {
		p.GatewayTransactionID = n.TransactionID
	}
	res.Status = status

	if status != models.PaymentSuccess {
		if err := s.store.SavePayment(ctx, p); err != nil {
			return nil, err
		}
		return res, nil
	}

	var course *models.Course
	var enrollment *models.Enrollment
	err = s.store.WithTx(ctx, func(tx *storage.Service) error {
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		c, err := tx.GetCourse(ctx, p.CourseID)
		if err != nil {
			return err
		}
		expires := s.now().UTC().AddDate(0, 0, c.DurationMonths*config.EnrollmentMonthDays)
		e, _, err := tx.Enroll(ctx, p.StudentID, c.ID, expires)
		if err != nil {
			return err
		}
		course, enrollment = c, e
		return nil
	})
	if err != nil {
		s.log.Error("payment: order %s verified but enrollment failed: %v", p.OrderID, err)
		return nil, fmt.Errorf("payment: enroll for order %s: %w", p.OrderID, err)
	}
	res.Enrolled = true
	res.ExpiresOn = enrollment.ExpiresOn
	s.log.Info("payment: order %s settled, user %d enrolled in course %d", p.OrderID, p.StudentID, course.ID)

	s.confirm(ctx, p, course)
	return res, nil
}

func (s *Service) confirm(ctx context.Context, p *models.Payment, course *models.Course) {
	student, err := s.store.GetUser(ctx, p.StudentID)
	if err != nil {
		s.log.Error("payment: loading user %d for confirmation: %v", p.StudentID, err)
		return
	}
	text := fmt.Sprintf("Hi %s,\n\nYour payment has been processed and you are now enrolled in %s.\n\n"+
		"Transaction ID: %s\nPayment date: %s\nAmount paid: %s %s\n",
		student.Username, course.Title, p.TransactionID,
		s.now().UTC().Format("January 02, 2006"), FormatAmount(p.AmountCents), p.Currency)
	s.mail.Email(ctx, student, "Payment successful", text)
}

// FormatAmount renders minor units as "1234.50".
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func grossMatches(gross string, cents int64) bool {
	v, err := strconv.ParseFloat(gross, 64)
	if err != nil {
		return false
	}
	return int64(math.Round(v*100)) == cents
}
