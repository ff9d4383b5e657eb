package authsync

// fetchQueue — FIFO-очередь отложенных загрузок анкет.
// Каждый id присутствует в очереди не более одного раза.
// Очередь не потокобезопасна: доступ синхронизирует владелец (profileFetcher).
type fetchQueue struct {
	ids []string
}

// Push добавляет id в хвост очереди, если его там ещё нет.
func (q *fetchQueue) Push(id string) {
	for _, queued := range q.ids {
		if queued == id {
			return
		}
	}

	q.ids = append(q.ids, id)
}

// Pop снимает id с головы очереди; ("", false) — очередь пуста.
func (q *fetchQueue) Pop() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}

	id := q.ids[0]
	q.ids = q.ids[1:]

	return id, true
}

// Len возвращает число ожидающих id.
func (q *fetchQueue) Len() int {
	return len(q.ids)
}

// Reset очищает очередь (используется при выходе пользователя).
func (q *fetchQueue) Reset() {
	q.ids = nil
}
