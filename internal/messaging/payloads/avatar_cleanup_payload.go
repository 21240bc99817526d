package payloads

import "time"

// AvatarCleanupPayload: задача на удаление файла аватара, ставшего ненужным
// после замены или удаления записи.
type AvatarCleanupPayload struct {
	Key        string    `json:"key"`
	Reason     string    `json:"reason"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
