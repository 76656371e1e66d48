package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrQuery — запрос к БД завершился ошибкой.
	// Граница изоляции: проверка, поймавшая эту ошибку, возвращает
	// пустой список алертов и не валит остальные проверки.
	ErrQuery = errors.New("query failed")
)
