package tutor

import "context"

// ModelClient is the outbound port to the language model. Implementations
// live in infrastructure/external; tests substitute fakes. Both the teacher
// turn and the archivist turn go through the same client with different
// prompts.
type ModelClient interface {
	// Generate sends a prompt and returns the raw reply text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// DedupeGuard suppresses duplicate archivist runs for the same topic when a
// completion fires twice in quick succession. Implementations are advisory:
// when the guard itself fails the run proceeds.
type DedupeGuard interface {
	// TryAcquire returns true when this caller won the right to run the
	// archivist for (student, topic).
	TryAcquire(ctx context.Context, studentID, topicID string) (bool, error)
}
