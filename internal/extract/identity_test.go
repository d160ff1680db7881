package extract

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentitiesFirstWriteWins(t *testing.T) {
	ids := NewIdentities()
	ids.Learn("10.0.0.1:5701", "aaaa-1111")
	ids.Learn("10.0.0.1:5701", "bbbb-2222")

	assert.Equal(t, "aaaa-1111", ids.Lookup("10.0.0.1:5701"))
	assert.Equal(t, 1, ids.Len())
}

func TestIdentitiesIgnoresEmpty(t *testing.T) {
	ids := NewIdentities()
	ids.Learn("", "aaaa-1111")
	ids.Learn("10.0.0.1:5701", "")

	assert.Equal(t, 0, ids.Len())
	assert.Equal(t, "", ids.Lookup("10.0.0.1:5701"))
}

func TestIdentitiesConcurrentLearn(t *testing.T) {
	ids := NewIdentities()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ids.Learn("10.0.0.9:5701", "cccc-3333")
				_ = ids.Lookup("10.0.0.9:5701")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, "cccc-3333", ids.Lookup("10.0.0.9:5701"))
}

func TestContentIDDeterministic(t *testing.T) {
	a := contentID("file", "12", "leader_set", "msg")
	b := contentID("file", "12", "leader_set", "msg")
	c := contentID("file", "13", "leader_set", "msg")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40)
}

func TestContentIDSeparatesParts(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	assert.NotEqual(t, contentID("ab", "c"), contentID("a", "bc"))
}
