package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryJoinAndMembers(t *testing.T) {
	reg := NewRegistry()
	a := NewSession("a", nil)
	b := NewSession("b", nil)

	reg.Join(42, a)
	reg.Join(42, b)

	members := reg.Members(42)
	assert.Len(t, members, 2)
	assert.True(t, reg.Contains(42, a))
	assert.True(t, reg.Contains(42, b))
	assert.Equal(t, 1, reg.RoomCount())
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a := NewSession("a", nil)

	reg.Join(7, a)
	reg.Join(7, a)

	assert.Len(t, reg.Members(7), 1)
}

func TestRegistryLeaveUnknownRoomIsNoOp(t *testing.T) {
	reg := NewRegistry()
	a := NewSession("a", nil)

	require.NotPanics(t, func() {
		reg.Leave(99, a)
	})
	assert.Equal(t, 0, reg.RoomCount())
}

func TestRegistryReclaimsEmptyRooms(t *testing.T) {
	reg := NewRegistry()
	a := NewSession("a", nil)
	b := NewSession("b", nil)

	reg.Join(42, a)
	reg.Join(42, b)
	reg.Leave(42, a)
	assert.Equal(t, 1, reg.RoomCount())

	reg.Leave(42, b)
	assert.Equal(t, 0, reg.RoomCount())
	assert.Empty(t, reg.Members(42))
}

func TestRegistryMembersReturnsSnapshot(t *testing.T) {
	reg := NewRegistry()
	a := NewSession("a", nil)
	reg.Join(1, a)

	members := reg.Members(1)
	reg.Leave(1, a)

	// The earlier snapshot is unaffected by the later leave.
	assert.Len(t, members, 1)
	assert.Empty(t, reg.Members(1))
}

func TestRegistryConcurrentChurn(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := NewSession("s", nil)
			roomID := int64(n % 4)
			for j := 0; j < 100; j++ {
				reg.Join(roomID, s)
				reg.Members(roomID)
				reg.Leave(roomID, s)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, reg.RoomCount())
}
