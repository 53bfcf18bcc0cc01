package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Listen("session.changed", func(p any) { got = append(got, "cart:"+p.(string)) })
	b.Listen("session.changed", func(p any) { got = append(got, "wishlist:"+p.(string)) })
	b.Listen("other", func(any) { t.Fatal("wrong event") })

	b.Fire("session.changed", "login")
	assert.Equal(t, []string{"cart:login", "wishlist:login"}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	n := 0
	off := b.Listen("e", func(any) { n++ })
	b.Fire("e", nil)
	off()
	off()
	b.Fire("e", nil)

	assert.Equal(t, 1, n)
	assert.Equal(t, 0, b.Len("e"))
}

func TestListenerMayUnsubscribeDuringFire(t *testing.T) {
	b := NewBus()
	var off func()
	calls := 0
	off = b.Listen("e", func(any) { calls++; off() })
	b.Fire("e", nil)
	b.Fire("e", nil)
	assert.Equal(t, 1, calls)
}
