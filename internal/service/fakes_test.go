package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/billing"
	"github.com/sakif/prompt2json/internal/model"
)

// Hand-written in-memory fakes of the repository and billing interfaces.
// They keep service tests free of any database.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeConversionRepo struct {
	mu          sync.Mutex
	conversions map[string]model.Conversion
	nextID      int
	clock       time.Time
	err         error // returned by every method when set
}

func newFakeConversionRepo() *fakeConversionRepo {
	return &fakeConversionRepo{
		conversions: make(map[string]model.Conversion),
		clock:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeConversionRepo) CreateConversion(_ context.Context, c *model.Conversion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	c.ID = fmt.Sprintf("conv-%d", f.nextID)
	c.CreatedAt = f.clock
	c.UpdatedAt = f.clock
	f.conversions[c.ID] = *c
	return nil
}

func (f *fakeConversionRepo) ListConversionsByOwner(_ context.Context, ownerID string) ([]model.Conversion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Conversion, 0)
	for _, c := range f.conversions {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeConversionRepo) DeleteConversion(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c, ok := f.conversions[id]
	if !ok || c.UserID != ownerID {
		return apperror.NotFound("Conversion not found")
	}
	delete(f.conversions, id)
	return nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]model.User
	nextID  int
	creates int

	// raceEmail simulates another request inserting this email between
	// our lookup and our insert.
	raceEmail string
	getErr    error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if u.Email == f.raceEmail {
		f.byEmail[u.Email] = model.User{ID: "winner", Email: u.Email}
		f.raceEmail = ""
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return apperror.Conflict("user", "email")
	}
	f.nextID++
	f.creates++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	return &u, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

type fakeSessions struct {
	got []billing.CheckoutRequest
	id  string
	err error
}

func (f *fakeSessions) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (string, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}
