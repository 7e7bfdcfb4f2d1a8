package events

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kerlouan/goswapd/internal/core/types"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(func(ev Event) { got = append(got, "first:"+ev.Kind()) })
	bus.Subscribe(func(ev Event) { got = append(got, "second:"+ev.Kind()) })

	bus.Emit(PoolCreated{Index: 1, FeeRate: 30})
	bus.Emit(DealReleased{DealID: 7, Amount: big.NewInt(100)})

	assert.Equal(t, []string{
		"first:PoolCreated", "second:PoolCreated",
		"first:DealReleased", "second:DealReleased",
	}, got)
}

func TestBusNilSafety(t *testing.T) {
	var bus *Bus
	bus.Emit(PoolCreated{}) // must not panic

	b := NewBus()
	b.Subscribe(nil)
	b.Emit(nil)
	b.Emit(Swapped{Trader: types.ZeroAddress, AmountIn: big.NewInt(1)})
}

func TestEventStreams(t *testing.T) {
	tests := []struct {
		ev     Event
		stream string
	}{
		{AddedLiquidity{}, StreamLiquidity},
		{Swapped{}, StreamSwaps},
		{FeeRateUpdated{}, StreamFees},
		{FeeAdminUpdated{}, StreamFees},
		{FeesClaimed{}, StreamFees},
		{PoolCreated{}, StreamPools},
		{BestRouteFound{}, StreamRoutes},
		{DealCreated{}, StreamDeals},
		{DealReleased{}, StreamDeals},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.stream, tt.ev.Stream(), tt.ev.Kind())
		assert.NotEmpty(t, tt.ev.Kind())
	}
}
