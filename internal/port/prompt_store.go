package port

// PromptStore loads static instruction text by path.
type PromptStore interface {
	Load(path string) (string, error)
}
