// Package keymutex реализует взаимное исключение мутирующих операций,
// конкурирующих за один внешний идентификатор (например, конвертация
// одной и той же корзины в заказ при двойном submit-е клиента).
package keymutex

import "sync"

type entry struct {
	mu sync.Mutex
	// refs считает держателей и ожидающих; запись удаляется из map,
	// когда счётчик падает до нуля, чтобы map не рос бесконечно.
	refs int
}

// KeyMutex выдаёт mutex на строковый ключ. Вызовы с разными ключами
// не блокируют друг друга; порядок пробуждения ожидающих не гарантируется.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New создаёт пустой KeyMutex.
func New() *KeyMutex {
	return &KeyMutex{entries: make(map[string]*entry)}
}

// Lock захватывает mutex ключа и возвращает функцию освобождения.
// Возвращённый unlock обязан быть вызван ровно один раз.
func (k *KeyMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// WithLock выполняет fn под mutex-ом ключа. Освобождение безусловное,
// в том числе при panic внутри fn.
func (k *KeyMutex) WithLock(key string, fn func() error) error {
	unlock := k.Lock(key)
	defer unlock()
	return fn()
}

// Len возвращает число ключей с активными держателями (для тестов).
func (k *KeyMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
