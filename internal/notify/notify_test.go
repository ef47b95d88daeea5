package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_DeliversInSubscriptionOrder(t *testing.T) {
	// --- Arrange ---
	var n Notifier[int]
	var got []string
	n.Subscribe(func(v int) { got = append(got, "first") })
	n.Subscribe(func(v int) { got = append(got, "second") })

	// --- Act ---
	n.Emit(1)

	// --- Assert ---
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := New[string]()
	calls := 0
	sub := n.Subscribe(func(string) { calls++ })

	n.Emit("a")
	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Emit("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, n.Len())
}

func TestNotifier_Close(t *testing.T) {
	n := New[int]()
	calls := 0
	n.Subscribe(func(int) { calls++ })
	n.Close()

	sub := n.Subscribe(func(int) { calls++ })
	n.Emit(1)
	sub.Unsubscribe()

	assert.Zero(t, calls)
}
