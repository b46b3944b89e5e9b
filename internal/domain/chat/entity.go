// Package chat contiene el historial de conversación entre estudiante y
// tutor. El historial es inmutable: solo se añaden mensajes, nunca se editan.
package chat

import (
	"strings"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role identifica al autor de un mensaje.
type Role string

const (
	// RoleUser - mensaje escrito por el estudiante.
	RoleUser Role = "user"
	// RoleAssistant - respuesta visible del tutor.
	RoleAssistant Role = "assistant"
)

// IsValid comprueba que el rol sea uno de los permitidos.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String devuelve la representación textual del rol.
func (r Role) String() string {
	return string(r)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTIDAD: MESSAGE
// ══════════════════════════════════════════════════════════════════════════════

// Message representa un mensaje del historial de un tema.
// Solo se persiste el texto visible; el bloque de estado que acompaña a las
// respuestas del modelo nunca entra en el historial.
type Message struct {
	// ID - identificador único del mensaje (UUID).
	ID string

	// StudentID - estudiante dueño de la conversación.
	StudentID string

	// TopicID - tema sobre el que versa el mensaje.
	TopicID string

	// Role - autor del mensaje.
	Role Role

	// Content - texto del mensaje.
	Content string

	// CreatedAt - momento de creación.
	CreatedAt time.Time
}

// Validate comprueba que el mensaje sea persistible.
func (m *Message) Validate() error {
	if !m.Role.IsValid() {
		return shared.ErrInvalidChatRole
	}
	if strings.TrimSpace(m.Content) == "" {
		return shared.ErrEmptyMessage
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT
// ══════════════════════════════════════════════════════════════════════════════

// RenderTranscript convierte el historial de un tema en el texto plano que
// consume el archivista: una línea "ROL: contenido" por mensaje, separadas
// por una línea en blanco.
func RenderTranscript(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.ToUpper(string(m.Role)))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
