package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripnotify/internal/accounts"
	"tripnotify/internal/config"
	"tripnotify/internal/domain"
	"tripnotify/internal/model"
	"tripnotify/internal/realtime"
	"tripnotify/internal/store/memory"
)

type storeMock struct {
	mock.Mock
}

func (m *storeMock) Insert(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *storeMock) ListByRecipient(ctx context.Context, recipientID string, page, pageSize int) ([]model.Notification, int64, error) {
	args := m.Called(ctx, recipientID, page, pageSize)
	return args.Get(0).([]model.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *storeMock) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *storeMock) MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error) {
	args := m.Called(ctx, recipientID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *storeMock) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *storeMock) MarkEmailMirrored(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *storeMock) DeleteOwned(ctx context.Context, recipientID string, id int64) (bool, error) {
	args := m.Called(ctx, recipientID, id)
	return args.Bool(0), args.Error(1)
}

type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mailerMock) Send(ctx context.Context, n model.Notification, address string) error {
	return m.Called(ctx, n, address).Error(0)
}

func testConfig() *config.Config {
	return &config.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func newTestService(store *storeMock, mailer *mailerMock, directory *accounts.MemoryDirectory) (*Service, *realtime.Hub) {
	hub := realtime.NewHub()
	svc := NewService(testConfig(), store, realtime.NewPublisher(hub, zap.NewNop()), mailer, directory, zap.NewNop())
	return svc, hub
}

func TestServiceCreate(t *testing.T) {
	t.Run("invalid kind", func(t *testing.T) {
		store := &storeMock{}
		mailer := &mailerMock{}
		svc, _ := newTestService(store, mailer, accounts.NewMemoryDirectory())

		_, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        "bad",
			Title:       "title",
			Body:        "body",
		})
		require.ErrorIs(t, err, domain.ErrInvalidKind)
		store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("empty title", func(t *testing.T) {
		store := &storeMock{}
		mailer := &mailerMock{}
		svc, _ := newTestService(store, mailer, accounts.NewMemoryDirectory())

		_, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindSystem,
			Title:       "",
			Body:        "body",
		})
		require.ErrorIs(t, err, domain.ErrEmptyTitle)
	})

	t.Run("store error fails the call", func(t *testing.T) {
		storeErr := errors.New("store failed")
		store := &storeMock{}
		store.On("Insert", mock.Anything, mock.Anything).Return(model.Notification{}, storeErr).Once()
		mailer := &mailerMock{}
		svc, _ := newTestService(store, mailer, accounts.NewMemoryDirectory())

		_, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindSystem,
			Title:       "title",
			Body:        "body",
		})
		require.ErrorIs(t, err, storeErr)
		store.AssertExpectations(t)
	})

	t.Run("pushes to live connections", func(t *testing.T) {
		created := model.Notification{
			ID:          42,
			RecipientID: "u1",
			Kind:        domain.KindTripUpdate,
			Title:       "title",
			Body:        "body",
			CreatedAt:   time.Now().UTC(),
		}
		store := &storeMock{}
		store.On("Insert", mock.Anything, mock.Anything).Return(created, nil).Once()
		mailer := &mailerMock{}
		svc, hub := newTestService(store, mailer, accounts.NewMemoryDirectory())

		client := &realtime.Client{RecipientID: "u1", Ch: make(chan model.PushPayload, 1)}
		hub.Register(client)
		defer hub.Unregister(client)

		got, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindTripUpdate,
			Title:       "title",
			Body:        "body",
		})
		require.NoError(t, err)
		require.Equal(t, int64(42), got.ID)

		select {
		case payload := <-client.Ch:
			// The push carries exactly what a fetch of the record returns.
			require.Equal(t, model.PushPayloadOf(created), payload)
		case <-time.After(200 * time.Millisecond):
			t.Fatal("expected push to live client")
		}
		store.AssertExpectations(t)
	})

	t.Run("wants email but transport disabled", func(t *testing.T) {
		created := model.Notification{ID: 1, RecipientID: "u1", Kind: domain.KindSystem, Title: "t", Body: "b"}
		store := &storeMock{}
		store.On("Insert", mock.Anything, mock.Anything).Return(created, nil).Once()
		mailer := &mailerMock{}
		mailer.On("Enabled").Return(false)
		svc, _ := newTestService(store, mailer, accounts.NewMemoryDirectory())

		got, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindSystem,
			Title:       "t",
			Body:        "b",
			WantsEmail:  true,
		})
		require.NoError(t, err)
		require.False(t, got.EmailMirrored)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "MarkEmailMirrored", mock.Anything, mock.Anything)
	})

	t.Run("email failure does not fail the create", func(t *testing.T) {
		created := model.Notification{ID: 2, RecipientID: "u1", Kind: domain.KindSystem, Title: "t", Body: "b"}
		store := &storeMock{}
		store.On("Insert", mock.Anything, mock.Anything).Return(created, nil).Once()
		mailer := &mailerMock{}
		mailer.On("Enabled").Return(true)
		mailer.On("Send", mock.Anything, mock.Anything, "u1@example.com").Return(errors.New("relay down")).Once()
		directory := accounts.NewMemoryDirectory()
		directory.Put("u1", "u1@example.com")
		svc, _ := newTestService(store, mailer, directory)

		_, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindSystem,
			Title:       "t",
			Body:        "b",
			WantsEmail:  true,
		})
		require.NoError(t, err)
		store.AssertNotCalled(t, "MarkEmailMirrored", mock.Anything, mock.Anything)
		mailer.AssertExpectations(t)
	})

	t.Run("email success marks the mirror flag", func(t *testing.T) {
		created := model.Notification{ID: 3, RecipientID: "u1", Kind: domain.KindSystem, Title: "t", Body: "b"}
		store := &storeMock{}
		store.On("Insert", mock.Anything, mock.Anything).Return(created, nil).Once()
		store.On("MarkEmailMirrored", mock.Anything, int64(3)).Return(nil).Once()
		mailer := &mailerMock{}
		mailer.On("Enabled").Return(true)
		mailer.On("Send", mock.Anything, mock.Anything, "u1@example.com").Return(nil).Once()
		directory := accounts.NewMemoryDirectory()
		directory.Put("u1", "u1@example.com")
		svc, _ := newTestService(store, mailer, directory)

		_, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindSystem,
			Title:       "t",
			Body:        "b",
			WantsEmail:  true,
		})
		require.NoError(t, err)
		store.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("no address on file is tolerated", func(t *testing.T) {
		created := model.Notification{ID: 4, RecipientID: "u1", Kind: domain.KindSystem, Title: "t", Body: "b"}
		store := &storeMock{}
		store.On("Insert", mock.Anything, mock.Anything).Return(created, nil).Once()
		mailer := &mailerMock{}
		mailer.On("Enabled").Return(true)
		svc, _ := newTestService(store, mailer, accounts.NewMemoryDirectory())

		_, err := svc.Create(context.Background(), CreateInput{
			RecipientID: "u1",
			Kind:        domain.KindSystem,
			Title:       "t",
			Body:        "b",
			WantsEmail:  true,
		})
		require.NoError(t, err)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServiceList(t *testing.T) {
	newMemoryService := func(t *testing.T) (*Service, *memory.Store) {
		t.Helper()
		store := memory.New(zap.NewNop())
		hub := realtime.NewHub()
		mailer := &mailerMock{}
		svc := NewService(testConfig(), store, realtime.NewPublisher(hub, zap.NewNop()), mailer, accounts.NewMemoryDirectory(), zap.NewNop())
		return svc, store
	}

	t.Run("pagination flags", func(t *testing.T) {
		svc, store := newMemoryService(t)
		for i := 0; i < 45; i++ {
			_, err := store.Insert(context.Background(), model.Notification{
				RecipientID: "u1", Kind: domain.KindSystem, Title: "t", Body: "b",
			})
			require.NoError(t, err)
		}

		items, pagination, err := svc.List(context.Background(), "u1", 2, 20)
		require.NoError(t, err)
		require.Len(t, items, 20)
		require.Equal(t, int64(45), pagination.TotalCount)
		require.True(t, pagination.HasNextPage)
		require.True(t, pagination.HasPrevPage)

		items, pagination, err = svc.List(context.Background(), "u1", 3, 20)
		require.NoError(t, err)
		require.Len(t, items, 5)
		require.False(t, pagination.HasNextPage)
		require.True(t, pagination.HasPrevPage)

		items, pagination, err = svc.List(context.Background(), "u1", 1, 20)
		require.NoError(t, err)
		require.Len(t, items, 20)
		require.True(t, pagination.HasNextPage)
		require.False(t, pagination.HasPrevPage)
	})

	t.Run("clamps page and page size", func(t *testing.T) {
		svc, _ := newMemoryService(t)

		_, pagination, err := svc.List(context.Background(), "u1", 0, 0)
		require.NoError(t, err)
		require.Equal(t, 1, pagination.Page)
		require.Equal(t, 20, pagination.PageSize)

		_, pagination, err = svc.List(context.Background(), "u1", 1, 1000)
		require.NoError(t, err)
		require.Equal(t, 20, pagination.PageSize)
	})
}

func TestServiceMarkReadAndDelete(t *testing.T) {
	t.Run("empty id set is a no-op", func(t *testing.T) {
		store := &storeMock{}
		svc, _ := newTestService(store, &mailerMock{}, accounts.NewMemoryDirectory())

		updated, err := svc.MarkRead(context.Background(), "u1", nil)
		require.NoError(t, err)
		require.Zero(t, updated)
		store.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign id surfaces not found", func(t *testing.T) {
		store := &storeMock{}
		store.On("MarkRead", mock.Anything, "u1", []int64{9}).Return(int64(0), domain.ErrNotFound).Once()
		svc, _ := newTestService(store, &mailerMock{}, accounts.NewMemoryDirectory())

		_, err := svc.MarkRead(context.Background(), "u1", []int64{9})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete miss surfaces not found", func(t *testing.T) {
		store := &storeMock{}
		store.On("DeleteOwned", mock.Anything, "u1", int64(9)).Return(false, nil).Once()
		svc, _ := newTestService(store, &mailerMock{}, accounts.NewMemoryDirectory())

		err := svc.Delete(context.Background(), "u1", 9)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete hit succeeds", func(t *testing.T) {
		store := &storeMock{}
		store.On("DeleteOwned", mock.Anything, "u1", int64(9)).Return(true, nil).Once()
		svc, _ := newTestService(store, &mailerMock{}, accounts.NewMemoryDirectory())

		require.NoError(t, svc.Delete(context.Background(), "u1", 9))
	})
}
