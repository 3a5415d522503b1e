package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind).Error(0)
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *MockChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange).Error(0)
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *MockChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	a := m.Called(queue)
	return a.Get(0).(<-chan amqp.Delivery), a.Error(1)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func newTestClient(t *testing.T) (*Client, *MockChannel) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "events", "topic").Return(nil).Once()
	ch.On("QueueDeclare", "events_log").Return(nil).Once()
	ch.On("QueueBind", "events_log", "#", "events").Return(nil).Once()

	c, err := newClient(ch, Config{Exchange: "events", Queue: "events_log"}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return c, ch
}

func TestNewClient_DeclareFailure(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", "events", "topic").Return(errors.New("access refused")).Once()

	_, err := newClient(ch, Config{Exchange: "events", Queue: "q"}, zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "access refused")
}

func TestClient_PublishEncodesJSON(t *testing.T) {
	c, ch := newTestClient(t)

	ch.On("Publish", "events", "artwork.created", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var body map[string]interface{}
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			body["artworkId"] == "a1"
	})).Return(nil).Once()

	err := c.Publish(context.Background(), "artwork.created", map[string]interface{}{"artworkId": "a1"})
	assert.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestClient_PublishError(t *testing.T) {
	c, ch := newTestClient(t)
	ch.On("Publish", "events", "artwork.deleted", mock.Anything).Return(errors.New("channel closed")).Once()

	err := c.Publish(context.Background(), "artwork.deleted", map[string]string{})
	assert.ErrorContains(t, err, "channel closed")
}

func TestLogEvent_RejectsMalformedBody(t *testing.T) {
	handler := LogEvent(zap.NewNop().Sugar())
	assert.NoError(t, handler(amqp.Delivery{Body: []byte(`{"type":"artwork.created"}`)}))
	assert.Error(t, handler(amqp.Delivery{Body: []byte(`not json`)}))
}
