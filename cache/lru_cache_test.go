package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type doc struct {
	itemId string
	size   uint
}

func TestLruCache(t *testing.T) {
	svc := NewLruCacheSvc()

	require.NoError(t, svc.CreateCache("workbooks", 3))
	require.NoError(t, svc.CreateCache("layers", 2))
	require.Error(t, svc.CreateCache("workbooks", 3))

	svc.Put("workbooks", "aaa", &doc{itemId: "aaa", size: 100})
	svc.Put("workbooks", "bbb", &doc{itemId: "bbb", size: 200})
	svc.Put("workbooks", "ccc", &doc{itemId: "ccc", size: 300})

	data, err := svc.Get("workbooks", "aaa")
	require.NoError(t, err)
	require.Equal(t, "aaa", data.(*doc).itemId)

	data, err = svc.Get("workbooks", "ccc")
	require.NoError(t, err)
	require.Equal(t, "ccc", data.(*doc).itemId)

	// "bbb" is now the least recently used entry
	svc.Put("workbooks", "ddd", &doc{itemId: "ddd", size: 400})

	data, err = svc.Get("workbooks", "ddd")
	require.NoError(t, err)
	require.Equal(t, "ddd", data.(*doc).itemId)

	require.Equal(t, 3, svc.GetSize("workbooks"))

	data, err = svc.Get("workbooks", "bbb")
	require.NoError(t, err)
	require.Nil(t, data)

	svc.Put("layers", "eee", &doc{itemId: "eee"})
	svc.Put("layers", "fff", &doc{itemId: "fff"})
	svc.Put("layers", "ggg", &doc{itemId: "ggg"})
	svc.Put("layers", "hhh", &doc{itemId: "hhh"})

	require.Equal(t, 2, svc.GetCapacity("layers"))

	svc.Evict("layers", "hhh")

	require.Equal(t, 1, svc.GetSize("layers"))

	data, err = svc.Get("layers", "eee")
	require.NoError(t, err)
	require.Nil(t, data)

	data, err = svc.Get("layers", "ggg")
	require.NoError(t, err)
	require.Equal(t, "ggg", data.(*doc).itemId)

	_, err = svc.Get("missing", "key")
	require.Error(t, err)
}

func TestLruCacheReSize(t *testing.T) {
	svc := NewLruCacheSvc()

	require.NoError(t, svc.CreateCache("resize", 4))
	svc.Put("resize", "a", 1)
	svc.Put("resize", "b", 2)
	svc.Put("resize", "c", 3)

	require.NoError(t, svc.ReSize("resize", 2))
	require.Equal(t, 2, svc.GetSize("resize"))
	require.Equal(t, 2, svc.GetCapacity("resize"))

	require.Error(t, svc.ReSize("missing", 2))
}
