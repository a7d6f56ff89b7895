package editcontext

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStore_Replace(t *testing.T) {
	t.Parallel()

	model := &person{}
	ec, err := New(model)
	require.NoError(t, err)

	store := NewMessageStore(ec)
	other := NewMessageStore(ec)

	store.Add(ec.Field("Name"), "old")
	other.Add(ec.Field("Name"), "kept")

	store.Replace([]Message{
		{Field: Field(&model.Address, "City"), Path: "Address.City", Text: "city"},
		{Field: ec.Field("Name"), Path: "Name", Text: "name"},
	})

	assert.Equal(t, []string{"name"}, store.For(ec.Field("Name")))
	assert.Equal(t, []string{"city"}, store.For(Field(&model.Address, "City")))
	assert.Equal(t, []string{"kept"}, other.For(ec.Field("Name")))

	store.Replace(nil)
	assert.Equal(t, []string{"kept"}, ec.MessagesFor(ec.Field("Name")))
}

func TestMessageStore_ReplaceAt(t *testing.T) {
	t.Parallel()

	model := &person{}
	ec, err := New(model)
	require.NoError(t, err)

	store := NewMessageStore(ec)
	line := Field(&model.Address, "Line1")

	store.AddAt("Address.Line1", line, "line")
	store.AddAt("Address.City", Field(&model.Address, "City"), "city")
	store.Add(ec.Field("Name"), "name")

	store.ReplaceAt("Address", ec.Field("Address"), []Message{
		{Field: line, Path: "Address.Line1", Text: "line again"},
	})

	var texts []string
	for _, msg := range ec.Messages() {
		texts = append(texts, msg.Text)
	}

	assert.Equal(t, []string{"line again", "name"}, texts)
}

// Readers never observe the gap between dropping the old messages and adding
// the new ones.
func TestMessageStore_ReplaceIsAtomicForReaders(t *testing.T) {
	t.Parallel()

	ec, err := New(&person{})
	require.NoError(t, err)

	store := NewMessageStore(ec)
	msgs := []Message{
		{Field: ec.Field("Name"), Path: "Name", Text: "a"},
		{Field: ec.Field("Orders"), Path: "Orders", Text: "b"},
	}
	store.Replace(msgs)

	var (
		wg     sync.WaitGroup
		stop   atomic.Bool
		gaps   atomic.Int32
		halves atomic.Int32
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		for !stop.Load() {
			if !ec.HasMessages() {
				gaps.Add(1)
			}

			if n := len(ec.Messages()); n != len(msgs) {
				halves.Add(1)
			}
		}
	}()

	for range 2000 {
		store.Replace(msgs)
	}

	stop.Store(true)
	wg.Wait()

	assert.Zero(t, gaps.Load())
	assert.Zero(t, halves.Load())
}
