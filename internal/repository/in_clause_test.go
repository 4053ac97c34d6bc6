package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDs(t *testing.T) {
	// Пустой вход — батчей нет
	assert.Nil(t, chunkIDs(nil, 10))
	assert.Nil(t, chunkIDs([]int64{}, 10))

	// Меньше одного батча
	batches := chunkIDs([]int64{1, 2, 3}, 10)
	require.Len(t, batches, 1)
	assert.Equal(t, []int64{1, 2, 3}, batches[0])

	// Ровно на границе
	ids := make([]int64, 200)
	for i := range ids {
		ids[i] = int64(i)
	}
	batches = chunkIDs(ids, 100)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 100)

	// С остатком
	batches = chunkIDs(ids[:150], 100)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 50)

	// Все элементы сохраняются и порядок не меняется
	var flat []int64
	for _, b := range batches {
		flat = append(flat, b...)
	}
	assert.Equal(t, ids[:150], flat)

	// Некорректный размер батча заменяется дефолтным
	batches = chunkIDs(ids[:150], 0)
	require.Len(t, batches, 2)
}
