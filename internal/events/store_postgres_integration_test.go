//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"colonx/internal/events"
	"colonx/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *events.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(s.postgres.ApplySchema(context.Background(), events.Schema))
	s.store = events.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "outbox", "ledger_events")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAppendAndListByTopic() {
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.store.Append(ctx, events.Event{
		Topic: events.TopicMint, To: "user1", Amount: 100, Height: 1, Timestamp: base,
	}))
	s.Require().NoError(s.store.Append(ctx, events.Event{
		Topic: events.TopicMint, To: "user2", Amount: 200, Height: 2, Timestamp: base.Add(time.Second),
	}))
	s.Require().NoError(s.store.Append(ctx, events.Event{
		Topic: events.TopicBurn, From: "user1", Amount: 40, Height: 3, Timestamp: base.Add(2 * time.Second),
	}))

	minted, err := s.store.ListByTopic(ctx, events.TopicMint)
	s.Require().NoError(err)
	s.Require().Len(minted, 2)
	s.Equal("user1", minted[0].To, "events come back oldest first")
	s.Equal(int64(100), minted[0].Amount)
	s.Equal(uint32(1), minted[0].Height)
	s.Equal("user2", minted[1].To)

	burned, err := s.store.ListByTopic(ctx, events.TopicBurn)
	s.Require().NoError(err)
	s.Require().Len(burned, 1)
	s.Equal("user1", burned[0].From)
}

func (s *PostgresStoreSuite) TestOutboxLifecycle() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, events.Event{
		Topic: events.TopicTransfer, From: "a", To: "b", Amount: 50, Height: 7, Timestamp: time.Now(),
	}))

	pending, err := s.store.PendingOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(string(events.TopicTransfer), pending[0].Topic)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(pending[0].Payload, &payload))
	s.Equal("a", payload["From"])
	s.Equal("b", payload["To"])
	s.Equal(float64(50), payload["Amount"])

	s.Require().NoError(s.store.MarkRelayed(ctx, pending[0].ID))

	pending, err = s.store.PendingOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending, "relayed entries drop out of the pending set")
}

func (s *PostgresStoreSuite) TestPendingOutboxHonorsLimit() {
	ctx := context.Background()
	for i := range 5 {
		s.Require().NoError(s.store.Append(ctx, events.Event{
			Topic: events.TopicMint, To: "user", Amount: int64(i + 5), Timestamp: time.Now(),
		}))
	}

	pending, err := s.store.PendingOutbox(ctx, 3)
	s.Require().NoError(err)
	s.Len(pending, 3)
}
