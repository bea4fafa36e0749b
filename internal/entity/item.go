package entity

// VocabularyItem is a content entry owned by the vocabulary collaborator.
// This core reads items to drive practice sessions and never mutates them.
type VocabularyItem struct {
	ID         string
	Word       string
	BaseWord   string
	Definition string
	Level      string
	Category   string
}
