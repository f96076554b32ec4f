package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/logging"
	"github.com/habithome/habithome-api/internal/services"
	"github.com/habithome/habithome-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) WriteMessage(_ int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, data)
	return nil
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	hub := NewHub(logging.Discard())
	family, other := uuid.New(), uuid.New()
	alice, bob := uuid.New(), uuid.New()

	aliceConn := &connection{conn: &recorder{}, userID: alice}
	bobConn := &connection{conn: &recorder{}, userID: bob}
	strangerConn := &connection{conn: &recorder{}, userID: uuid.New()}
	hub.register(family, aliceConn)
	hub.register(family, bobConn)
	hub.register(other, strangerConn)
	assert.Equal(t, 2, hub.Connections(family))

	hub.Broadcast(family, alice, WSEvent{Type: EventTaskCreated, FamilyID: family.String(), UserID: alice.String()})

	assert.Empty(t, aliceConn.conn.(*recorder).msgs)
	assert.Empty(t, strangerConn.conn.(*recorder).msgs)
	require.Len(t, bobConn.conn.(*recorder).msgs, 1)

	var got WSEvent
	require.NoError(t, json.Unmarshal(bobConn.conn.(*recorder).msgs[0], &got))
	assert.Equal(t, EventTaskCreated, got.Type)
	assert.Equal(t, family.String(), got.FamilyID)

	hub.unregister(family, aliceConn)
	hub.unregister(family, bobConn)
	assert.Zero(t, hub.Connections(family))

	// Broadcasting to an empty room is a no-op.
	hub.Broadcast(family, alice, WSEvent{Type: EventTaskDeleted})
}

func TestHub_DisconnectDropsOnlyThatUser(t *testing.T) {
	hub := NewHub(logging.Discard())
	family, other := uuid.New(), uuid.New()
	alice, bob := uuid.New(), uuid.New()

	aliceConn := &connection{conn: &recorder{}, userID: alice}
	bobPhone := &connection{conn: &recorder{}, userID: bob}
	bobLaptop := &connection{conn: &recorder{}, userID: bob}
	bobElsewhere := &connection{conn: &recorder{}, userID: bob}
	hub.register(family, aliceConn)
	hub.register(family, bobPhone)
	hub.register(family, bobLaptop)
	hub.register(other, bobElsewhere)

	hub.Disconnect(family, bob)

	assert.Equal(t, 1, hub.Connections(family))
	assert.Equal(t, 1, hub.Connections(other))
	assert.True(t, bobPhone.conn.(*recorder).closed)
	assert.True(t, bobLaptop.conn.(*recorder).closed)
	assert.False(t, bobElsewhere.conn.(*recorder).closed)
	assert.False(t, aliceConn.conn.(*recorder).closed)

	hub.Broadcast(family, alice, WSEvent{Type: EventTaskCreated})
	assert.Empty(t, bobPhone.conn.(*recorder).msgs)

	// Unregistering after a disconnect is harmless.
	hub.unregister(family, bobPhone)
	assert.Equal(t, 1, hub.Connections(family))
}

func TestMemberLeft_ClosesRemovedUsersSockets(t *testing.T) {
	db := testutil.NewDB(t)
	families := services.NewFamilyService(db)
	log := logging.Discard()
	h := New(Deps{Families: families, Activity: services.NewActivityService(db, families), Log: log})

	family := uuid.New()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	bobConn := &connection{conn: &recorder{}, userID: bob}
	carolConn := &connection{conn: &recorder{}, userID: carol}
	h.hub.register(family, bobConn)
	h.hub.register(family, carolConn)

	h.memberLeft(context.Background(), family, bob, &alice)

	bobRec := bobConn.conn.(*recorder)
	require.Len(t, bobRec.msgs, 1, "the removed user is told before the socket closes")
	var got WSEvent
	require.NoError(t, json.Unmarshal(bobRec.msgs[0], &got))
	assert.Equal(t, EventMemberLeft, got.Type)
	assert.True(t, bobRec.closed)

	assert.False(t, carolConn.conn.(*recorder).closed)
	assert.Equal(t, 1, h.hub.Connections(family))

	h.hub.Broadcast(family, alice, WSEvent{Type: EventTaskUpdated})
	assert.Len(t, bobRec.msgs, 1)
	assert.Len(t, carolConn.conn.(*recorder).msgs, 2)
}
