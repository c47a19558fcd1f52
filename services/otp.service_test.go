package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/venbook/auth/errors"
	"github.com/venbook/auth/models"
	"github.com/venbook/auth/services"
	"github.com/venbook/auth/storage"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// sequenceGen hands out the given codes one after the other
func sequenceGen(codes ...string) func() string {
	i := 0
	return func() string {
		code := codes[i%len(codes)]
		i++
		return code
	}
}

func newService(now *time.Time, codes ...string) *services.OTP {
	return &services.OTP{
		Store:    storage.NewEphemeral(),
		Generate: sequenceGen(codes...),
		Now: func() time.Time {
			return *now
		},
	}
}

func TestSendThenVerify(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	record, err := svc.Send(ctx, "a@b.com", "signup")
	if err != nil {
		t.Fatalf("send failed : %v", err)
	}
	if record.Code != "123456" {
		t.Fatalf("expected the mocked code, got %s", record.Code)
	}
	if record.Email != "a@b.com" || record.Phone != "" {
		t.Fatalf("identifier was not classified as an email : %+v", record)
	}
	if !record.ExpiresAt.Equal(base.Add(5 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", record.ExpiresAt)
	}

	ok, err := svc.Verify(ctx, "a@b.com", "123456", "signup")
	if err != nil {
		t.Fatalf("verify failed : %v", err)
	}
	if !ok {
		t.Fatal("expected the first verification to succeed")
	}

	// the record is inert once consumed, replays must fail
	ok, err = svc.Verify(ctx, "a@b.com", "123456", "signup")
	if err != nil {
		t.Fatalf("verify failed : %v", err)
	}
	if ok {
		t.Fatal("expected the replayed verification to fail")
	}
}

func TestVerifyWrongPurpose(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}

	ok, err := svc.Verify(ctx, "a@b.com", "123456", "login")
	if err != nil {
		t.Fatalf("verify failed : %v", err)
	}
	if ok {
		t.Fatal("expected a purpose mismatch to fail the verification")
	}
}

func TestDefaultPurposeIsSignup(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	record, err := svc.Send(ctx, "a@b.com", "")
	if err != nil {
		t.Fatalf("send failed : %v", err)
	}
	if record.Purpose != "signup" {
		t.Fatalf("expected the default purpose, got %s", record.Purpose)
	}

	ok, err := svc.Verify(ctx, "a@b.com", "123456", "")
	if err != nil {
		t.Fatalf("verify failed : %v", err)
	}
	if !ok {
		t.Fatal("expected the verification with the default purpose to succeed")
	}
}

func TestExpiryBoundary(t *testing.T) {
	args := []struct {
		name  string
		after time.Duration
		want  bool
	}{
		{name: "just before expiry", after: 4*time.Minute + 59*time.Second, want: true},
		{name: "just after expiry", after: 5*time.Minute + time.Second, want: false},
	}

	for _, arg := range args {
		t.Run(arg.name, func(t *testing.T) {
			ctx := context.Background()
			now := base
			svc := newService(&now, "123456")

			if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
				t.Fatalf("send failed : %v", err)
			}

			now = base.Add(arg.after)
			ok, err := svc.Verify(ctx, "a@b.com", "123456", "signup")
			if err != nil {
				t.Fatalf("verify failed : %v", err)
			}
			if ok != arg.want {
				t.Fatalf("expected %v at %v after issue, got %v", arg.want, arg.after, ok)
			}
		})
	}
}

func TestIdentifierFlexibility(t *testing.T) {
	ctx := context.Background()
	now := base

	svc := newService(&now, "123456")
	record, err := svc.Send(ctx, "a@b.com", "signup")
	if err != nil {
		t.Fatalf("send failed : %v", err)
	}
	if record.Email == "" {
		t.Fatal("expected an email identifier to be stored in the email column")
	}
	if ok, _ := svc.Verify(ctx, "a@b.com", "123456", "signup"); !ok {
		t.Fatal("expected the email identifier to verify")
	}

	svc = newService(&now, "654321")
	record, err = svc.Send(ctx, "94771234567", "signup")
	if err != nil {
		t.Fatalf("send failed : %v", err)
	}
	if record.Phone == "" {
		t.Fatal("expected a phone identifier to be stored in the phone column")
	}
	if ok, _ := svc.Verify(ctx, "94771234567", "654321", "signup"); !ok {
		t.Fatal("expected the phone identifier to verify")
	}
}

func TestMultiRecordCoexistence(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "111111", "222222")

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}
	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}

	// verifying one record must not invalidate the other
	if ok, _ := svc.Verify(ctx, "a@b.com", "222222", "signup"); !ok {
		t.Fatal("expected the second issued code to verify")
	}
	if ok, _ := svc.Verify(ctx, "a@b.com", "111111", "signup"); !ok {
		t.Fatal("expected the first issued code to still verify")
	}
}

func TestCleanupIdempotence(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}

	now = base.Add(6 * time.Minute)
	removed, err := svc.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup failed : %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed record, got %d", removed)
	}

	removed, err = svc.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup failed : %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected the second cleanup to remove nothing, got %d", removed)
	}
}

func TestConcurrentVerify(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}

	const callers = 100
	var wg sync.WaitGroup
	results := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.Verify(ctx, "a@b.com", "123456", "signup")
			if err != nil {
				t.Errorf("verify failed : %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for ok := range results {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one caller to win the verification, got %d", won)
	}
}

func TestAttemptsLockout(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}

	for i := 0; i < 3; i++ {
		if ok, _ := svc.Verify(ctx, "a@b.com", "000000", "signup"); ok {
			t.Fatal("expected a wrong code to fail")
		}
	}

	// the record burned through its attempt budget, the right code no longer works
	ok, err := svc.Verify(ctx, "a@b.com", "123456", "signup")
	if err != nil {
		t.Fatalf("verify failed : %v", err)
	}
	if ok {
		t.Fatal("expected a locked out record to reject the correct code")
	}
}

func TestVerifyValidation(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := newService(&now, "123456")

	args := []struct {
		identifier string
		code       string
	}{
		{identifier: "", code: "123456"},
		{identifier: "a@b.com", code: ""},
		{identifier: "a@b.com", code: "12345"},
		{identifier: "a@b.com", code: "1234567"},
	}

	for _, arg := range args {
		_, err := svc.Verify(ctx, arg.identifier, arg.code, "signup")
		if err != errors.ErrBadRequest {
			t.Fatalf("expected a validation error for %q/%q, got %v", arg.identifier, arg.code, err)
		}
	}

	if _, err := svc.Send(ctx, "", "signup"); err != errors.ErrBadRequest {
		t.Fatalf("expected a validation error for an empty identifier, got %v", err)
	}
}

type fakeSender struct {
	sent chan string
	err  error
}

func (f *fakeSender) Send(destination, code, purpose string) error {
	f.sent <- fmt.Sprintf("%s:%s:%s", destination, code, purpose)
	return f.err
}

func TestDeliveryIsBestEffort(t *testing.T) {
	ctx := context.Background()
	now := base
	sender := &fakeSender{
		sent: make(chan string, 1),
		err:  fmt.Errorf("provider is down"),
	}

	svc := newService(&now, "123456")
	svc.Sender = sender

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("expected a delivery failure to never fail send, got %v", err)
	}

	select {
	case delivered := <-sender.sent:
		if delivered != "a@b.com:123456:signup" {
			t.Fatalf("unexpected delivery payload %s", delivered)
		}
	case <-time.After(time.Second):
		t.Fatal("the passcode was never handed to the delivery collaborator")
	}

	// the record is persisted regardless of the delivery outcome
	if ok, _ := svc.Verify(ctx, "a@b.com", "123456", "signup"); !ok {
		t.Fatal("expected the persisted code to verify")
	}
}

// failStore simulates a durable store whose retry budget is always exhausted
type failStore struct{}

func (failStore) Create(context.Context, *models.OtpRecord) error {
	return fmt.Errorf("connection refused")
}

func (failStore) FindConsumable(context.Context, string, string, string, time.Time) (*models.OtpRecord, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failStore) MarkVerified(context.Context, uuid.UUID) (bool, error) {
	return false, fmt.Errorf("connection refused")
}

func (failStore) RecordFailure(context.Context, string, string, time.Time) error {
	return fmt.Errorf("connection refused")
}

func (failStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, fmt.Errorf("connection refused")
}

func TestStorageUnavailableIsDistinct(t *testing.T) {
	ctx := context.Background()
	now := base
	svc := &services.OTP{
		Store:    failStore{},
		Generate: sequenceGen("123456"),
		Now: func() time.Time {
			return now
		},
	}

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != errors.ErrStorageUnavailable {
		t.Fatalf("expected storage unavailable from send, got %v", err)
	}

	ok, err := svc.Verify(ctx, "a@b.com", "123456", "signup")
	if err != errors.ErrStorageUnavailable {
		t.Fatalf("expected storage unavailable from verify, got %v", err)
	}
	if ok {
		t.Fatal("a storage failure must never report a successful verification")
	}

	if _, err := svc.Cleanup(ctx); err != errors.ErrStorageUnavailable {
		t.Fatalf("expected storage unavailable from cleanup, got %v", err)
	}
}

func TestStorageFallback(t *testing.T) {
	// startup without a database binds the service to the in memory store,
	// the external contract stays the same
	store := storage.Select(nil)
	if _, ok := store.(*storage.Ephemeral); !ok {
		t.Fatalf("expected the ephemeral store, got %T", store)
	}

	ctx := context.Background()
	now := base
	svc := &services.OTP{
		Store:    store,
		Generate: sequenceGen("123456"),
		Now: func() time.Time {
			return now
		},
	}

	if _, err := svc.Send(ctx, "a@b.com", "signup"); err != nil {
		t.Fatalf("send failed : %v", err)
	}
	if ok, _ := svc.Verify(ctx, "a@b.com", "123456", "signup"); !ok {
		t.Fatal("expected the fallback store to verify the code")
	}
}
