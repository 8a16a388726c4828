package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agrilink/marketplace/modules/shared/events"
	"github.com/agrilink/marketplace/modules/shared/events/contracts"
	"github.com/agrilink/marketplace/modules/shared/types"
	"github.com/agrilink/marketplace/modules/users/application/commands"
	"github.com/agrilink/marketplace/modules/users/domain"
)

// --- Mocks ---

type mockProfileRepository struct {
	findByIDFn func(ctx context.Context, id types.UserID) (*domain.Profile, error)
	saveFn     func(ctx context.Context, profile *domain.Profile) error
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id types.UserID) (*domain.Profile, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	return m.saveFn(ctx, profile)
}

type mockTransactionScope struct {
	executeFn func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.executeFn(ctx, fn)
}

type mockPublisher struct {
	publishFn func(ctx context.Context, evts ...events.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, evts ...events.Event) error {
	return m.publishFn(ctx, evts...)
}

func passthroughScope() *mockTransactionScope {
	return &mockTransactionScope{
		executeFn: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

// --- Tests ---

func TestDeleteProfileHandler_Handle_Success(t *testing.T) {
	// Arrange
	userID := newTestUserID(t)
	profile := createTestProfile(t, userID)

	var savedProfile *domain.Profile
	var publishedEvents []events.Event

	repo := &mockProfileRepository{
		findByIDFn: func(ctx context.Context, id types.UserID) (*domain.Profile, error) {
			if id.String() != userID.String() {
				t.Errorf("expected userID %s, got %s", userID, id)
			}
			return profile, nil
		},
		saveFn: func(ctx context.Context, p *domain.Profile) error {
			savedProfile = p
			return nil
		},
	}

	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, evts ...events.Event) error {
			publishedEvents = evts
			return nil
		},
	}

	handler := commands.NewDeleteProfileHandler(repo, passthroughScope(), publisher)

	// Act
	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{
		UserID: userID.String(),
	})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if savedProfile == nil {
		t.Fatal("expected profile to be saved")
	}
	if savedProfile.Status() != domain.StatusDeleted {
		t.Errorf("expected profile status to be deleted, got %s", savedProfile.Status())
	}

	if len(publishedEvents) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publishedEvents))
	}
	deletedEvent, ok := publishedEvents[0].(contracts.UserDeletedEvent)
	if !ok {
		t.Fatalf("expected UserDeletedEvent, got %T", publishedEvents[0])
	}
	if deletedEvent.UserID != userID.String() {
		t.Errorf("expected event userID %s, got %s", userID, deletedEvent.UserID)
	}
	if len(savedProfile.DomainEvents()) != 0 {
		t.Error("expected domain events to be drained after publishing")
	}
}

func TestDeleteProfileHandler_Handle_InvalidUserID(t *testing.T) {
	handler := commands.NewDeleteProfileHandler(nil, nil, nil)

	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{
		UserID: "invalid-uuid",
	})

	if err == nil {
		t.Fatal("expected error for invalid user ID")
	}
	if !errors.Is(err, types.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestDeleteProfileHandler_Handle_ProfileNotFound(t *testing.T) {
	userID := newTestUserID(t)

	repo := &mockProfileRepository{
		findByIDFn: func(ctx context.Context, id types.UserID) (*domain.Profile, error) {
			return nil, domain.ErrProfileNotFound
		},
		saveFn: func(ctx context.Context, p *domain.Profile) error {
			t.Fatal("Save should not be called when profile is not found")
			return nil
		},
	}

	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, evts ...events.Event) error {
			t.Fatal("Publish should not be called when profile is not found")
			return nil
		},
	}

	handler := commands.NewDeleteProfileHandler(repo, passthroughScope(), publisher)

	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{
		UserID: userID.String(),
	})

	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDeleteProfileHandler_Handle_AlreadyDeleted(t *testing.T) {
	userID := newTestUserID(t)
	profile := createTestProfile(t, userID)
	_ = profile.Delete()
	profile.ClearDomainEvents()

	repo := &mockProfileRepository{
		findByIDFn: func(ctx context.Context, id types.UserID) (*domain.Profile, error) {
			return profile, nil
		},
		saveFn: func(ctx context.Context, p *domain.Profile) error {
			t.Fatal("Save should not be called for an already deleted profile")
			return nil
		},
	}

	handler := commands.NewDeleteProfileHandler(repo, passthroughScope(), nil)

	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{UserID: userID.String()})
	if !errors.Is(err, domain.ErrProfileDeleted) {
		t.Errorf("expected ErrProfileDeleted, got %v", err)
	}
}

func TestDeleteProfileHandler_Handle_SaveError(t *testing.T) {
	userID := newTestUserID(t)
	profile := createTestProfile(t, userID)
	errSave := errors.New("save failed")

	repo := &mockProfileRepository{
		findByIDFn: func(ctx context.Context, id types.UserID) (*domain.Profile, error) {
			return profile, nil
		},
		saveFn: func(ctx context.Context, p *domain.Profile) error {
			return errSave
		},
	}

	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, evts ...events.Event) error {
			t.Fatal("Publish should not be called when save fails")
			return nil
		},
	}

	handler := commands.NewDeleteProfileHandler(repo, passthroughScope(), publisher)

	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{
		UserID: userID.String(),
	})

	if !errors.Is(err, errSave) {
		t.Errorf("expected errSave, got %v", err)
	}
}

func TestDeleteProfileHandler_Handle_PublishError(t *testing.T) {
	userID := newTestUserID(t)
	profile := createTestProfile(t, userID)
	errPublish := errors.New("publish failed")

	repo := &mockProfileRepository{
		findByIDFn: func(ctx context.Context, id types.UserID) (*domain.Profile, error) {
			return profile, nil
		},
		saveFn: func(ctx context.Context, p *domain.Profile) error {
			return nil
		},
	}

	publisher := &mockPublisher{
		publishFn: func(ctx context.Context, evts ...events.Event) error {
			return errPublish
		},
	}

	handler := commands.NewDeleteProfileHandler(repo, passthroughScope(), publisher)

	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{
		UserID: userID.String(),
	})

	if !errors.Is(err, errPublish) {
		t.Errorf("expected errPublish, got %v", err)
	}
}

func TestDeleteProfileHandler_Handle_TransactionError(t *testing.T) {
	userID := newTestUserID(t)
	errTx := errors.New("transaction failed")

	txScope := &mockTransactionScope{
		executeFn: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return errTx // the transaction itself fails
		},
	}

	handler := commands.NewDeleteProfileHandler(nil, txScope, nil)

	err := handler.Handle(context.Background(), commands.DeleteProfileCommand{
		UserID: userID.String(),
	})

	if !errors.Is(err, errTx) {
		t.Errorf("expected errTx, got %v", err)
	}
}

// --- Helper ---

func newTestUserID(t *testing.T) types.UserID {
	t.Helper()
	id, err := types.ParseUserID("0e9f4a52-8d3b-4c71-a6e2-5f1b7c9d3e20")
	if err != nil {
		t.Fatalf("failed to parse user id: %v", err)
	}
	return id
}

func createTestProfile(t *testing.T, id types.UserID) *domain.Profile {
	t.Helper()

	email, err := domain.NewEmail("test@example.com")
	if err != nil {
		t.Fatalf("failed to create email: %v", err)
	}

	name, err := domain.NewName("John Doe")
	if err != nil {
		t.Fatalf("failed to create name: %v", err)
	}

	return domain.NewProfile(id, email, name, domain.RoleBuyer, domain.Phone{})
}
