package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerPool(t *testing.T) {
	require := require.New(t)

	timer := GetTimer(10 * time.Millisecond)
	require.NotNil(timer)

	select {
	case <-timer.C:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	PutTimer(timer)

	// Reused timer must fire again after reset.
	timer = GetTimer(10 * time.Millisecond)
	select {
	case <-timer.C:
	case <-time.After(time.Second):
		t.Fatal("reused timer did not fire")
	}
	PutTimer(timer)
}

func TestTimerPoolPutActiveTimer(t *testing.T) {
	timer := GetTimer(time.Hour)
	PutTimer(timer)

	// Getting it back with a short duration must not fire early from the
	// previous (stopped) schedule.
	timer = GetTimer(20 * time.Millisecond)
	start := time.Now()
	<-timer.C
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	PutTimer(timer)
}
