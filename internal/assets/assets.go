// Package assets содержит файлы, встроенные в бинарник.
package assets

import _ "embed"

// DefaultAvatar: изображение-заглушка, которое кладётся в хранилище аватаров при старте.
//
//go:embed default-avatar.png
var DefaultAvatar []byte
