package storage

import "errors"

// ErrTooLarge файл больше лимита загрузки.
var ErrTooLarge = errors.New("storage: размер файла превышает лимит")
