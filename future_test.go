package taskflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFutureResolvesWithValue(t *testing.T) {
	fut, resolve := NewFuture[int]()

	assert.False(t, fut.Ready())

	resolve(42, nil)

	assert.True(t, fut.Ready())

	v, err := fut.Get()
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.NoError(t, fut.Wait())
}

func TestFutureResolvesWithError(t *testing.T) {
	sampleErr := errors.New("sample error")

	fut, resolve := NewFuture[string]()
	resolve("", sampleErr)

	v, err := fut.Get()
	assert.Equal(t, "", v)
	assert.ErrorIs(t, err, sampleErr)
	assert.ErrorIs(t, fut.Wait(), sampleErr)
}

func TestFutureResolvesExactlyOnce(t *testing.T) {
	fut, resolve := NewFuture[int]()

	resolve(1, nil)
	resolve(2, errors.New("ignored"))

	v, err := fut.Get()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFutureGetBlocksUntilResolved(t *testing.T) {
	fut, resolve := NewFuture[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		resolve(7, nil)
	}()

	v, err := fut.Get()
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFutureDoneChannel(t *testing.T) {
	fut, resolve := NewFuture[int]()

	select {
	case <-fut.Done():
		t.Fatal("Done closed before resolution")
	default:
	}

	resolve(0, nil)

	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after resolution")
	}
}
