package service

import (
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/store"
)

type Services struct {
	stores        *store.Stores
	txRunner      TxRunner
	producer      queue.Producer
	generationCfg GenerationConfig
}

func NewServices(stores *store.Stores, txRunner TxRunner, producer queue.Producer, generationCfg GenerationConfig) *Services {
	return &Services{
		stores:        stores,
		txRunner:      txRunner,
		producer:      producer,
		generationCfg: generationCfg,
	}
}

func (s *Services) Generations() GenerationService {
	return NewGenerationService(s.stores.Generations(), s.stores.Candidates(), s.producer, s.generationCfg)
}

func (s *Services) Candidates() CandidateService {
	return NewCandidateService(s.stores.Candidates(), s.txRunner)
}
