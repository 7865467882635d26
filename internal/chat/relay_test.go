package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier maps token strings to user IDs.
type stubVerifier struct {
	users map[string]int64
}

func (v *stubVerifier) Verify(token string) (int64, error) {
	uid, ok := v.users[token]
	if !ok {
		return 0, errors.New("invalid token")
	}
	return uid, nil
}

// stubOracle answers membership from a fixed table; keys are "tid:uid".
type stubOracle struct {
	memberships map[string]bool
	err         error
}

func (o *stubOracle) IsMember(_ context.Context, teamID, userID int64) (bool, error) {
	if o.err != nil {
		return false, o.err
	}
	return o.memberships[fmt.Sprintf("%d:%d", teamID, userID)], nil
}

func newTestRelay(t *testing.T) (*Relay, *stubVerifier, *stubOracle) {
	t.Helper()
	verifier := &stubVerifier{users: map[string]int64{
		"token-alice": 1,
		"token-bob":   2,
		"token-carol": 3,
	}}
	oracle := &stubOracle{memberships: map[string]bool{
		"42:1": true,
		"42:2": true,
		"99:3": true,
	}}
	return NewRelay(NewRegistry(), verifier, oracle), verifier, oracle
}

func frame(t *testing.T, event EventType, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(Envelope{Event: event, Data: raw})
	require.NoError(t, err)
	return msg
}

// drain empties the session's outbound buffer and returns the queued frames.
func drain(s *Session) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-s.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func decode(t *testing.T, raw []byte) (EventType, map[string]any) {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return env.Event, data
}

func TestJoinBroadcastsEnterToWholeRoom(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	bob := NewSession("bob", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(bob, frame(t, EventJoin, JoinData{TID: 42, Token: "token-bob"}))

	require.True(t, alice.InRoom(42))
	require.True(t, bob.InRoom(42))

	// Alice sees her own enter plus Bob's; Bob sees only his own.
	aliceMsgs := drain(alice)
	require.Len(t, aliceMsgs, 2)
	event, data := decode(t, aliceMsgs[0])
	assert.Equal(t, EventEnter, event)
	assert.Equal(t, float64(1), data["uid"])
	event, data = decode(t, aliceMsgs[1])
	assert.Equal(t, EventEnter, event)
	assert.Equal(t, float64(2), data["uid"])

	bobMsgs := drain(bob)
	require.Len(t, bobMsgs, 1)
	event, data = decode(t, bobMsgs[0])
	assert.Equal(t, EventEnter, event)
	assert.Equal(t, float64(2), data["uid"])
}

func TestJoinWithBadTokenIsSilentlyDropped(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	s := NewSession("s", nil)

	relay.HandleEvent(s, frame(t, EventJoin, JoinData{TID: 42, Token: "forged"}))

	assert.False(t, s.InRoom(42))
	assert.Empty(t, drain(s))
}

func TestJoinByNonMemberIsSilentlyDropped(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	carol := NewSession("carol", nil)

	// Carol's token is valid but she does not belong to team 42.
	relay.HandleEvent(carol, frame(t, EventJoin, JoinData{TID: 42, Token: "token-carol"}))

	assert.False(t, carol.InRoom(42))
	assert.Empty(t, drain(carol))
}

func TestJoinWithFailingOracleIsSilentlyDropped(t *testing.T) {
	relay, _, oracle := newTestRelay(t)
	oracle.err = errors.New("db down")
	s := NewSession("s", nil)

	relay.HandleEvent(s, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))

	assert.False(t, s.InRoom(42))
	assert.Empty(t, drain(s))
}

func TestLeaveNotifiesRemainingMembersWithClientUID(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	bob := NewSession("bob", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(bob, frame(t, EventJoin, JoinData{TID: 42, Token: "token-bob"}))
	drain(alice)
	drain(bob)

	// The uid in a leave is forwarded as-is, even when it is nonsense.
	relay.HandleEvent(alice, frame(t, EventLeave, LeaveData{TID: 42, UID: 777}))

	assert.False(t, alice.InRoom(42))
	assert.Empty(t, drain(alice), "the leaver is removed before the exit is sent")

	bobMsgs := drain(bob)
	require.Len(t, bobMsgs, 1)
	event, data := decode(t, bobMsgs[0])
	assert.Equal(t, EventExit, event)
	assert.Equal(t, float64(777), data["uid"])
}

func TestLeaveWithoutJoinIsNoOp(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	bob := NewSession("bob", nil)

	relay.HandleEvent(bob, frame(t, EventJoin, JoinData{TID: 42, Token: "token-bob"}))
	drain(bob)

	relay.HandleEvent(alice, frame(t, EventLeave, LeaveData{TID: 42, UID: 1}))

	assert.Empty(t, drain(alice))
	assert.Empty(t, drain(bob), "no exit reaches the room for a phantom leave")
}

func TestChatForwardsPayloadVerbatimIncludingSender(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	bob := NewSession("bob", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(bob, frame(t, EventJoin, JoinData{TID: 42, Token: "token-bob"}))
	drain(alice)
	drain(bob)

	payload := json.RawMessage(`{"tid":42,"text":"hello","extra":{"k":[1,2,3]}}`)
	msg, err := json.Marshal(Envelope{Event: EventChat, Data: payload})
	require.NoError(t, err)
	relay.HandleEvent(alice, msg)

	for _, s := range []*Session{alice, bob} {
		msgs := drain(s)
		require.Len(t, msgs, 1, "session %s", s.ID)
		var env Envelope
		require.NoError(t, json.Unmarshal(msgs[0], &env))
		assert.Equal(t, EventChat, env.Event)
		assert.JSONEq(t, string(payload), string(env.Data))
	}
}

func TestChatFromOutsiderIsSilentlyDropped(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	carol := NewSession("carol", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	drain(alice)

	relay.HandleEvent(carol, frame(t, EventChat, map[string]any{"tid": 42, "text": "psst"}))

	assert.Empty(t, drain(alice))
	assert.Empty(t, drain(carol))
}

func TestChatIsScopedToItsRoom(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	carol := NewSession("carol", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(carol, frame(t, EventJoin, JoinData{TID: 99, Token: "token-carol"}))
	drain(alice)
	drain(carol)

	relay.HandleEvent(alice, frame(t, EventChat, map[string]any{"tid": 42, "text": "team only"}))

	assert.Len(t, drain(alice), 1)
	assert.Empty(t, drain(carol), "other rooms never see the message")
}

func TestMalformedFramesAreDropped(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	s := NewSession("s", nil)

	frames := [][]byte{
		[]byte("not json"),
		[]byte(`{"event":"join","data":"not an object"}`),
		[]byte(`{"event":"teleport","data":{}}`),
		[]byte(`{}`),
	}
	for _, raw := range frames {
		require.NotPanics(t, func() {
			relay.HandleEvent(s, raw)
		})
	}
	assert.Empty(t, drain(s))
}

func TestDisconnectRemovesFromAllRoomsWithoutNotice(t *testing.T) {
	relay, _, oracle := newTestRelay(t)
	oracle.memberships["99:1"] = true
	alice := NewSession("alice", nil)
	bob := NewSession("bob", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 99, Token: "token-alice"}))
	relay.HandleEvent(bob, frame(t, EventJoin, JoinData{TID: 42, Token: "token-bob"}))
	drain(alice)
	drain(bob)

	relay.HandleDisconnect(alice)

	assert.Empty(t, alice.Rooms())
	assert.False(t, relay.registry.Contains(42, alice))
	assert.False(t, relay.registry.Contains(99, alice))
	assert.Empty(t, drain(bob), "an ungraceful drop sends no exit")

	// Room 99 had only Alice, so it is reclaimed; 42 still holds Bob.
	assert.Equal(t, 1, relay.registry.RoomCount())
}

func TestRejoinAfterLeaveWorks(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(alice, frame(t, EventLeave, LeaveData{TID: 42, UID: 1}))
	drain(alice)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))

	require.True(t, alice.InRoom(42))
	msgs := drain(alice)
	require.Len(t, msgs, 1)
	event, data := decode(t, msgs[0])
	assert.Equal(t, EventEnter, event)
	assert.Equal(t, float64(1), data["uid"])
}

func TestRoomBroadcastOrderIsConsistent(t *testing.T) {
	relay, _, _ := newTestRelay(t)
	alice := NewSession("alice", nil)
	bob := NewSession("bob", nil)

	relay.HandleEvent(alice, frame(t, EventJoin, JoinData{TID: 42, Token: "token-alice"}))
	relay.HandleEvent(bob, frame(t, EventJoin, JoinData{TID: 42, Token: "token-bob"}))
	drain(alice)
	drain(bob)

	for i := 0; i < 10; i++ {
		relay.HandleEvent(alice, frame(t, EventChat, map[string]any{"tid": 42, "seq": i}))
	}

	aliceMsgs := drain(alice)
	bobMsgs := drain(bob)
	require.Len(t, aliceMsgs, 10)
	require.Len(t, bobMsgs, 10)
	for i := range aliceMsgs {
		assert.Equal(t, string(aliceMsgs[i]), string(bobMsgs[i]))
	}
}

func TestBroadcastDuringDisconnectDoesNotPanic(t *testing.T) {
	relay, _, _ := newTestRelay(t)

	for iter := 0; iter < 50; iter++ {
		const members = 100
		sessions := make([]*Session, members)
		for i := range sessions {
			s := NewSession(fmt.Sprintf("s-%d-%d", iter, i), nil)
			relay.registry.Join(42, s)
			s.rooms[42] = struct{}{}
			sessions[i] = s
		}

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					relay.broadcast(42, []byte(`{"event":"chat","data":{"tid":42}}`))
				}
			}()
		}
		// Half the room disconnects mid-broadcast, the way readPump tears a
		// session down: registry removal, then channel close. A broadcast
		// holding an older member snapshot must tolerate the closed channel.
		for i := 0; i < members/2; i++ {
			wg.Add(1)
			go func(s *Session) {
				defer wg.Done()
				relay.HandleDisconnect(s)
				s.Close()
			}(sessions[i])
		}
		wg.Wait()

		for _, s := range sessions {
			relay.HandleDisconnect(s)
		}
	}
	assert.Equal(t, 0, relay.registry.RoomCount())
}

func TestEnqueueAfterCloseIsNoOp(t *testing.T) {
	s := NewSession("s1", nil)
	s.Close()
	s.Close()

	assert.NotPanics(t, func() {
		s.Enqueue([]byte("late message"))
	})
	_, open := <-s.send
	assert.False(t, open)
}
