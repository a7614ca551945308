package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feedstack/social-feed-service/internal/domain"
)

func newChatService(rooms *mockChatRepository, publisher *mockPublisher, namespace string) *ChatService {
	return NewChatService(rooms, publisher, newTestMetrics(namespace), newTestLogger())
}

func TestChatService_CreateRoom(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("CreateRoom", ctx, []int64{7, 9, 11}).
		Return(&domain.ChatRoom{Base: domain.Base{ID: 5}}, nil)

	svc := newChatService(rooms, new(mockPublisher), "chat_create_room_test")

	room, err := svc.CreateRoom(ctx, stubTx{}, 7, []int64{9, 11})

	require.NoError(t, err)
	assert.Equal(t, int64(5), room.ID)
	rooms.AssertExpectations(t)
}

func TestChatService_CreateRoom_DeduplicatesCreator(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("CreateRoom", ctx, []int64{7, 9}).
		Return(&domain.ChatRoom{Base: domain.Base{ID: 5}}, nil)

	svc := newChatService(rooms, new(mockPublisher), "chat_create_room_dedup_test")

	_, err := svc.CreateRoom(ctx, stubTx{}, 7, []int64{7, 9})

	require.NoError(t, err)
	rooms.AssertExpectations(t)
}

func TestChatService_CreateRoom_RequiresTransaction(t *testing.T) {
	svc := newChatService(new(mockChatRepository), new(mockPublisher), "chat_create_room_notx_test")

	_, err := svc.CreateRoom(context.Background(), nil, 7, []int64{9})

	require.ErrorIs(t, err, domain.ErrTxMisuse)
}

func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("RoomExists", ctx, int64(5)).Return(true, nil)
	rooms.On("IsMember", ctx, int64(5), int64(7)).Return(true, nil)
	rooms.On("CreateMessage", ctx, mock.AnythingOfType("*domain.ChatMessage")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.ChatMessage).ID = 13
		}).
		Return(nil)

	publisher := new(mockPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventChatMessageCreated && e.AggregateID == 13
	})).Return(nil)

	svc := newChatService(rooms, publisher, "chat_send_test")

	message, err := svc.SendMessage(ctx, SendMessageInput{RoomID: 5, AuthorID: 7, Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, int64(13), message.ID)
	rooms.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestChatService_SendMessage_NonMember(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("RoomExists", ctx, int64(5)).Return(true, nil)
	rooms.On("IsMember", ctx, int64(5), int64(9)).Return(false, nil)

	svc := newChatService(rooms, new(mockPublisher), "chat_send_nonmember_test")

	_, err := svc.SendMessage(ctx, SendMessageInput{RoomID: 5, AuthorID: 9, Message: "hi"})

	require.ErrorIs(t, err, domain.ErrForbidden)
	rooms.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestChatService_SendMessage_UnknownRoom(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("RoomExists", ctx, int64(5)).Return(false, nil)

	svc := newChatService(rooms, new(mockPublisher), "chat_send_unknown_test")

	_, err := svc.SendMessage(ctx, SendMessageInput{RoomID: 5, AuthorID: 7, Message: "hi"})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatService_SendMessage_EmptyMessage(t *testing.T) {
	svc := newChatService(new(mockChatRepository), new(mockPublisher), "chat_send_empty_test")

	_, err := svc.SendMessage(context.Background(), SendMessageInput{RoomID: 5, AuthorID: 7, Message: "   "})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_SendMessage_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("RoomExists", ctx, int64(5)).Return(true, nil)
	rooms.On("IsMember", ctx, int64(5), int64(7)).Return(true, nil)
	rooms.On("CreateMessage", ctx, mock.AnythingOfType("*domain.ChatMessage")).Return(nil)

	publisher := new(mockPublisher)
	publisher.On("Publish", ctx, mock.Anything).Return(assert.AnError)

	svc := newChatService(rooms, publisher, "chat_send_pubfail_test")

	// The message is persisted; a publish failure is logged, not returned.
	_, err := svc.SendMessage(ctx, SendMessageInput{RoomID: 5, AuthorID: 7, Message: "hi"})

	require.NoError(t, err)
}

func TestChatService_GetRoom_MembershipEnforced(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("RoomExists", ctx, int64(5)).Return(true, nil)
	rooms.On("IsMember", ctx, int64(5), int64(9)).Return(false, nil)

	svc := newChatService(rooms, new(mockPublisher), "chat_get_room_test")

	_, err := svc.GetRoom(ctx, 5, 9)

	require.ErrorIs(t, err, domain.ErrForbidden)
	rooms.AssertNotCalled(t, "GetRoom", mock.Anything, mock.Anything)
}

func TestChatService_ListMessages_MembershipEnforced(t *testing.T) {
	ctx := context.Background()

	rooms := new(mockChatRepository)
	rooms.On("RoomExists", ctx, int64(5)).Return(true, nil)
	rooms.On("IsMember", ctx, int64(5), int64(9)).Return(false, nil)

	svc := newChatService(rooms, new(mockPublisher), "chat_list_messages_test")

	_, err := svc.ListMessages(ctx, nil, nil, 5, 9)

	require.ErrorIs(t, err, domain.ErrForbidden)
	rooms.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
