package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

type memoryMessages struct {
	mu   sync.Mutex
	msgs []*chat.Message
}

func (m *memoryMessages) Create(_ context.Context, msg *chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memoryMessages) FindRecentDuplicate(_ context.Context, senderID, receiverID uuid.UUID, body string, since time.Time) (*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		msg := m.msgs[i]
		if msg.Sender.ID == senderID && msg.Receiver.ID == receiverID && msg.Body == body && !msg.CreatedAt.Before(since) {
			return msg, nil
		}
	}
	return nil, shared.NotFound("Message")
}

func (m *memoryMessages) FindForUser(_ context.Context, userID uuid.UUID, apartmentName string) ([]*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*chat.Message
	for _, msg := range m.msgs {
		if msg.Involves(userID) && policy.SameApartment(msg.ApartmentName, apartmentName) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryMessages) FindBetween(_ context.Context, a, b uuid.UUID) ([]*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*chat.Message
	for _, msg := range m.msgs {
		if msg.Involves(a) && msg.Involves(b) {
			out = append(out, msg)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*chat.Message
}

func (n *recordingNotifier) MessageCreated(m *chat.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, m)
}

type chatFixture struct {
	repo     *memoryMessages
	users    *testutil.MockUserRepository
	notifier *recordingNotifier
	svc      *Service
}

func newChatFixture(people ...*identity.User) *chatFixture {
	f := &chatFixture{
		repo:     &memoryMessages{},
		users:    new(testutil.MockUserRepository),
		notifier: &recordingNotifier{},
	}
	for _, u := range people {
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	}
	f.svc = NewService(f.repo, f.users, f.notifier, nil, zap.NewNop())
	return f
}

func TestService_CreateMessage(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "oak")
	f := newChatFixture(landlord, tenant)
	ctx := context.Background()

	msg, created, err := f.svc.CreateMessage(ctx, tenant.ID, landlord.ID, "  The heater is broken ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "The heater is broken", msg.Message)
	assert.Equal(t, identity.RoleTenant, msg.SenderRole)
	assert.Equal(t, "Lara", msg.ReceiverName)
	assert.Equal(t, "oak", msg.ApartmentName)

	require.Len(t, f.notifier.msgs, 1)
	assert.Equal(t, msg.ID, f.notifier.msgs[0].ID)
}

func TestService_CreateMessageDeduplicates(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "Oak")
	f := newChatFixture(landlord, tenant)
	ctx := context.Background()
	base := time.Now()
	f.svc.now = func() time.Time { return base }

	first, created, err := f.svc.CreateMessage(ctx, tenant.ID, landlord.ID, "hello")
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := f.svc.CreateMessage(ctx, tenant.ID, landlord.ID, " hello ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	reply, created, err := f.svc.CreateMessage(ctx, landlord.ID, tenant.ID, "hello")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, reply.ID)

	f.svc.now = func() time.Time { return base.Add(6 * time.Second) }
	later, created, err := f.svc.CreateMessage(ctx, tenant.ID, landlord.ID, "hello")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, later.ID)

	assert.Len(t, f.repo.msgs, 3)
	assert.Len(t, f.notifier.msgs, 3)
}

func TestService_CreateMessageRejections(t *testing.T) {
	oakLandlord := testutil.NewLandlord("Lara", "Oak", 1000)
	pineTenant := testutil.NewTenant("Pat", "pine")
	homeless := testutil.NewTenant("Hal", "")
	ghost := uuid.New()
	f := newChatFixture(oakLandlord, pineTenant, homeless)
	f.users.On("FindByID", mock.Anything, ghost).Return(nil, shared.ErrNotFound)
	ctx := context.Background()

	_, _, err := f.svc.CreateMessage(ctx, oakLandlord.ID, pineTenant.ID, "hi")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, _, err = f.svc.CreateMessage(ctx, homeless.ID, oakLandlord.ID, "hi")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, _, err = f.svc.CreateMessage(ctx, pineTenant.ID, oakLandlord.ID, "   ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, _, err = f.svc.CreateMessage(ctx, oakLandlord.ID, ghost, "hi")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorContains(t, err, "Receiver")

	_, _, err = f.svc.CreateMessage(ctx, oakLandlord.ID, oakLandlord.ID, "hi")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	assert.Empty(t, f.repo.msgs)
	assert.Empty(t, f.notifier.msgs)
}

func TestService_ConversationsAndReads(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	amy := testutil.NewTenant("Amy", "Oak")
	ben := testutil.NewTenant("Ben", "Oak")
	f := newChatFixture(landlord, amy, ben)
	ctx := context.Background()

	for _, send := range []struct {
		from, to *identity.User
		body     string
	}{
		{amy, landlord, "rent is late"},
		{landlord, amy, "no problem"},
		{ben, landlord, "tap leaks"},
	} {
		_, _, err := f.svc.CreateMessage(ctx, send.from.ID, send.to.ID, send.body)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	mine, err := f.svc.MyMessages(ctx, testutil.Actor(landlord))
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	convs, err := f.svc.Conversations(ctx, testutil.Actor(landlord))
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, ben.ID, convs[0].Partner.ID)
	assert.Equal(t, 1, convs[0].MessageCount)
	assert.Equal(t, amy.ID, convs[1].Partner.ID)
	assert.Equal(t, 2, convs[1].MessageCount)
	assert.Equal(t, "no problem", convs[1].LastMessage.Message)

	between, err := f.svc.Conversation(ctx, testutil.Actor(amy), amy.ID, landlord.ID)
	require.NoError(t, err)
	assert.Len(t, between, 2)

	_, err = f.svc.Conversation(ctx, testutil.Actor(ben), amy.ID, landlord.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_Partners(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "Oak")
	f := newChatFixture()
	ctx := context.Background()

	f.users.On("FindByApartment", mock.Anything, "Oak", identity.RoleTenant).Return([]*identity.User{tenant}, nil)
	f.users.On("FindByApartment", mock.Anything, "Oak", identity.RoleLandlord).Return([]*identity.User{landlord}, nil)

	partners, err := f.svc.Partners(ctx, testutil.Actor(landlord))
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, tenant.ID, partners[0].ID)

	partners, err = f.svc.Partners(ctx, testutil.Actor(tenant))
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, identity.RoleLandlord, partners[0].Role)
}
