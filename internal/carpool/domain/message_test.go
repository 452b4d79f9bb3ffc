package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageIsWellFormed(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"complete", Message{SenderID: "a", SenderName: "Alice", Text: "hi"}, true},
		{"missing sender id", Message{SenderName: "Alice", Text: "hi"}, false},
		{"missing sender name", Message{SenderID: "a", Text: "hi"}, false},
		{"missing text", Message{SenderID: "a", SenderName: "Alice"}, false},
		{"empty", Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.IsWellFormed())
		})
	}
}
