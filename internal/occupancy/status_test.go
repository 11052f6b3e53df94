package occupancy_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/occupancy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	topics []string
	keys   []string
	values [][]byte
}

func (m *mockPublisher) Publish(topic string, key string, value []byte) error {
	m.topics = append(m.topics, topic)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	return nil
}

func TestVenueStartsClosed(t *testing.T) {
	counter := occupancy.NewCounter(&mockOwnerDirectory{})
	status := occupancy.NewStatus(counter, nil, "", &logger.Logger{})

	assert.Equal(t, occupancy.StatusClosed, status.Current())
}

func TestToggleOpensAndCloses(t *testing.T) {
	owners := &mockOwnerDirectory{checkedIn: 12}
	counter := occupancy.NewCounter(owners)
	publisher := &mockPublisher{}
	status := occupancy.NewStatus(counter, publisher, "lorre.venue.status", &logger.Logger{})
	ctx := context.Background()

	current, err := status.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, occupancy.StatusOpen, current)
	assert.Equal(t, 0, owners.checkOutCalls)

	current, err = status.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, occupancy.StatusClosed, current)
	assert.Equal(t, occupancy.StatusClosed, status.Current())

	// Closing the venue checks everyone out.
	assert.Equal(t, 1, owners.checkOutCalls)
	count, err := counter.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTogglePublishesStatusEvents(t *testing.T) {
	counter := occupancy.NewCounter(&mockOwnerDirectory{})
	publisher := &mockPublisher{}
	status := occupancy.NewStatus(counter, publisher, "lorre.venue.status", &logger.Logger{})
	ctx := context.Background()

	_, err := status.Toggle(ctx)
	require.NoError(t, err)
	_, err = status.Toggle(ctx)
	require.NoError(t, err)

	require.Len(t, publisher.values, 2)
	assert.Equal(t, []string{"lorre.venue.status", "lorre.venue.status"}, publisher.topics)
	assert.Equal(t, []string{"open", "closed"}, publisher.keys)

	var event struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(publisher.values[1], &event))
	assert.Equal(t, "closed", event.Status)
}
