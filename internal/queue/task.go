package queue

type TaskType string

const (
	// TaskTypeGeneration asks a worker to run one pending generation.
	TaskTypeGeneration TaskType = "generation"
	// TaskTypeProcessPending asks a worker to sweep every pending generation.
	TaskTypeProcessPending TaskType = "process_pending"
)

func (t TaskType) Valid() bool {
	return t == TaskTypeGeneration || t == TaskTypeProcessPending
}
