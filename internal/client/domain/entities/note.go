// Package entities defines the domain entities of the note client.
package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Заголовок и содержимое, которыми помечается "удаленная" заметка.
const (
	DeletedTitle   = "[deleted]"
	DeletedContent = "this note has been deleted"
)

// NoteID - непрозрачный идентификатор, выданный сервером.
// Сервер может прислать его числом или строкой.
type NoteID string

// UnmarshalJSON принимает как число, так и строку.
func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("note id: %w", err)
		}
		*id = NoteID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	*id = NoteID(n.String())
	return nil
}

// MarshalJSON пишет числовой id числом, остальные - строкой.
func (id NoteID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id NoteID) String() string {
	return string(id)
}

// Note представляет заметку, полностью принадлежащую удаленному сервису.
type Note struct {
	ID      NoteID `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

// IsDeletionMarker сообщает, является ли заметка меткой удаления.
func (n Note) IsDeletionMarker() bool {
	return n.Title == DeletedTitle
}

// PendingDeletion живет, пока открыт диалог подтверждения удаления.
type PendingDeletion struct {
	ID    NoteID
	Title string
}
