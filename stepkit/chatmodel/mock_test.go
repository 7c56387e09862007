package chatmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMock_ReturnsResponsesInSequenceThenRepeatsLast(t *testing.T) {
	mock := &Mock{Responses: []Reply{{Text: "first"}, {Text: "second"}}}
	messages := []Message{{Role: RoleUser, Content: "hi"}}

	out1, err := mock.Chat(context.Background(), messages, nil)
	require.NoError(t, err)
	require.Equal(t, "first", out1.Text)

	out2, err := mock.Chat(context.Background(), messages, nil)
	require.NoError(t, err)
	require.Equal(t, "second", out2.Text)

	out3, err := mock.Chat(context.Background(), messages, nil)
	require.NoError(t, err)
	require.Equal(t, "second", out3.Text)
}

func TestMock_ErrInjectionStillRecordsCall(t *testing.T) {
	mock := &Mock{Err: errors.New("boom")}
	_, err := mock.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, nil)
	require.Error(t, err)
	require.Equal(t, 1, mock.CallCount())
}

func TestMock_Reset(t *testing.T) {
	mock := &Mock{Responses: []Reply{{Text: "ok"}}}
	messages := []Message{{Role: RoleUser, Content: "x"}}
	_, _ = mock.Chat(context.Background(), messages, nil)
	_, _ = mock.Chat(context.Background(), messages, nil)
	require.Equal(t, 2, mock.CallCount())

	mock.Reset()
	require.Equal(t, 0, mock.CallCount())

	out, err := mock.Chat(context.Background(), messages, nil)
	require.NoError(t, err)
	require.Equal(t, "ok", out.Text)
}

func TestNew_UnknownProviderErrors(t *testing.T) {
	_, err := New(Provider("bogus"), "key", "")
	require.Error(t, err)
}
