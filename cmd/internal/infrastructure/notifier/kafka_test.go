package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"notesboard/cmd/internal/contract"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
	deadline bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaNotifier_PublishesMessageKeyedByEmail(t *testing.T) {
	writer := &fakeWriter{}
	n := NewKafkaNotifierWithWriter(writer, time.Second)

	msg := &contract.VerificationMessage{Username: "alice", Email: "alice@example.com", Code: "123456"}
	require.NoError(t, n.Notify(context.Background(), msg))

	require.Len(t, writer.messages, 1)
	assert.True(t, writer.deadline)
	assert.Equal(t, []byte("alice@example.com"), writer.messages[0].Key)

	var decoded contract.VerificationMessage
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, *msg, decoded)
}

func TestKafkaNotifier_WrapsWriterError(t *testing.T) {
	cause := errors.New("broker down")
	n := NewKafkaNotifierWithWriter(&fakeWriter{err: cause}, 0)

	err := n.Notify(context.Background(), &contract.VerificationMessage{Email: "a@b.c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestKafkaNotifier_Close(t *testing.T) {
	writer := &fakeWriter{}
	require.NoError(t, NewKafkaNotifierWithWriter(writer, 0).Close())
	assert.True(t, writer.closed)
}

func TestNewKafkaNotifier_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaNotifier(nil, "verifications", time.Second)
	assert.Error(t, err)
}
