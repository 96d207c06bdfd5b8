package example

type GenerationStatus string

const (
	GenerationStatusPending GenerationStatus = "pending"
	GenerationStatusFailed  GenerationStatus = "failed"
)

type FlashcardOrigin string

const (
	FlashcardOriginAIFull FlashcardOrigin = "ai-full"
)

type Generation struct {
	Status    GenerationStatus
	ErrorCode string
}

type Flashcard struct {
	Origin FlashcardOrigin
}

func bad() {
	g := &Generation{}
	g.Status = "done" // want "enum field Status assigned string literal"

	_ = Flashcard{Origin: "ai"} // want "enum field Origin assigned string literal"
}

func good() {
	g := &Generation{}
	g.Status = GenerationStatusFailed // OK: using constant
	g.ErrorCode = "no_valid_cards"    // OK: plain string field

	_ = Flashcard{Origin: FlashcardOriginAIFull}
}

func alsoGood() {
	// OK: Variable, not literal
	status := GenerationStatusPending
	g := &Generation{Status: status}
	_ = g
}
