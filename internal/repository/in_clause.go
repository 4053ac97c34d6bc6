package repository

// maxBatchParams ограничивает число идентификаторов в одном запросе,
// чтобы не упереться в лимит SQL-параметров у драйвера/базы.
const maxBatchParams = 100

// chunkIDs разбивает срез идентификаторов на батчи не длиннее size.
// Для пустого среза возвращает nil.
func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		size = maxBatchParams
	}
	batches := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
